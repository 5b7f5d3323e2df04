// Package action defines the closed set of interaction tokens carried in
// callback button data. Tokens are parsed once at the transport boundary;
// malformed data is rejected there instead of being threaded through as raw
// strings.
package action

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	KindTaskDone Kind = iota
	KindTaskUndone
	KindTaskCancel
	KindTaskPostpone
	KindCaptureNow
	KindSkipTonight
)

// Action is one decoded button press.
type Action struct {
	Kind   Kind
	TaskID uint
	Days   int // postpone only
}

func TaskDone(taskID uint) Action     { return Action{Kind: KindTaskDone, TaskID: taskID} }
func TaskUndone(taskID uint) Action   { return Action{Kind: KindTaskUndone, TaskID: taskID} }
func TaskCancel(taskID uint) Action   { return Action{Kind: KindTaskCancel, TaskID: taskID} }
func TaskPostpone(taskID uint, days int) Action {
	return Action{Kind: KindTaskPostpone, TaskID: taskID, Days: days}
}
func CaptureNow() Action  { return Action{Kind: KindCaptureNow} }
func SkipTonight() Action { return Action{Kind: KindSkipTonight} }

// IsTask reports whether the action targets a specific task.
func (a Action) IsTask() bool {
	switch a.Kind {
	case KindTaskDone, KindTaskUndone, KindTaskCancel, KindTaskPostpone:
		return true
	}
	return false
}

// Token is the bare action token, e.g. "done" or "postpone:2". This is what
// gets recorded next to the callback identifier.
func (a Action) Token() string {
	switch a.Kind {
	case KindTaskDone:
		return "done"
	case KindTaskUndone:
		return "undone"
	case KindTaskCancel:
		return "cancel"
	case KindTaskPostpone:
		return fmt.Sprintf("postpone:%d", a.Days)
	case KindCaptureNow:
		return "captureNow"
	case KindSkipTonight:
		return "skipTonight"
	}
	return ""
}

// Encode renders the full callback data. Task actions carry the task id:
// "t:<id>:<token>"; prompt actions are "new:<token>". Telegram caps callback
// data at 64 bytes, which every form here fits well inside.
func (a Action) Encode() string {
	if a.IsTask() {
		return fmt.Sprintf("t:%d:%s", a.TaskID, a.Token())
	}
	return "new:" + a.Token()
}

// Parse decodes callback data produced by Encode.
func Parse(data string) (Action, error) {
	parts := strings.Split(data, ":")
	switch parts[0] {
	case "t":
		if len(parts) < 3 {
			return Action{}, fmt.Errorf("malformed task action %q", data)
		}
		id, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return Action{}, fmt.Errorf("malformed task id in %q", data)
		}
		taskID := uint(id)
		switch parts[2] {
		case "done":
			return TaskDone(taskID), nil
		case "undone":
			return TaskUndone(taskID), nil
		case "cancel":
			return TaskCancel(taskID), nil
		case "postpone":
			if len(parts) != 4 {
				return Action{}, fmt.Errorf("postpone without day count in %q", data)
			}
			days, err := strconv.Atoi(parts[3])
			if err != nil || days < 1 {
				return Action{}, fmt.Errorf("bad postpone days in %q", data)
			}
			return TaskPostpone(taskID, days), nil
		}
		return Action{}, fmt.Errorf("unknown task action %q", data)
	case "new":
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("malformed prompt action %q", data)
		}
		switch parts[1] {
		case "captureNow":
			return CaptureNow(), nil
		case "skipTonight":
			return SkipTonight(), nil
		}
		return Action{}, fmt.Errorf("unknown prompt action %q", data)
	}
	return Action{}, fmt.Errorf("unknown action namespace %q", data)
}
