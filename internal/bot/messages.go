package bot

import (
	"fmt"
	"strconv"
	"strings"

	"planbot/internal/model"
)

const (
	msgWelcome = "👋 你好！我是每日计划提醒机器人。\n\n" +
		"可用命令：\n" +
		"• /add — 录入新计划（每行一条，可带日期）\n" +
		"• /today — 查看今天的计划\n" +
		"• /week — 查看未来一周的计划\n" +
		"• /setevening HH:MM — 设置晚间核对时间\n" +
		"• /setmorning HH:MM — 设置早间提醒时间（off 关闭）\n" +
		"• /timezone <时区> — 设置时区，例如 Asia/Shanghai\n" +
		"• /help — 查看帮助"
	msgCapturePrompt   = "好的，把计划发给我吧。每行一条，行首可以带日期，例如：\n明天 买菜\n周五 交报告\n11-20 体检"
	msgSkipAck         = "好，今晚不再打扰。"
	msgNotCapturing    = "我现在没有在等录入。用 /add 开始添加计划。"
	msgUnknownCommand  = "不认识这条命令，试试 /help。"
	msgNothingToday    = "今天没有计划。用 /add 添加一条？"
	msgNothingThisWeek = "未来一周还没有计划。用 /add 添加一条？"
	msgAlreadyHandled  = "这个按钮已经处理过了。"
	msgTryAgain        = "出了点问题，请再试一次。"
	msgTaskGone        = "找不到这条任务，可能已被清理。"
	msgTaskClosed      = "这条任务已经结束，状态不再变化。"
	msgBadClock        = "时间格式不对，请用 HH:MM，例如 21:30。"
	msgBadTimezone     = "无法识别这个时区。请使用 IANA 名称，例如 Asia/Shanghai 或 Europe/Berlin。"
	msgPickPostpone    = "这条任务顺延几天？"

	headerToday = "📅 今天的计划："
	headerWeek  = "🗓 未来一周的计划："
)

// statusIcon renders the lifecycle state for listings.
func statusIcon(s model.Status) string {
	switch s {
	case model.StatusDone:
		return "✅"
	case model.StatusCanceled:
		return "🗑"
	case model.StatusMissed:
		return "⚠️"
	default:
		return "⬜"
	}
}

func listLine(t model.Task) string {
	return fmt.Sprintf("%s #%d %s", statusIcon(t.Status), t.ID, t.Content)
}

// parseClock reads "HH:MM" into hour and minute.
func parseClock(s string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("clock %q: bad hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock %q: bad minute", s)
	}
	return hour, minute, nil
}

// isOffInput matches the ways users ask to disable morning reminders.
func isOffInput(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "关闭", "关", "disable":
		return true
	}
	return false
}
