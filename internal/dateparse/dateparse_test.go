package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference Saturday used throughout: 2025-11-08.
var refSaturday = time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveExplicitDates(t *testing.T) {
	cases := []struct {
		text string
		want time.Time
	}{
		{"2025-12-25 圣诞节", date(2025, 12, 25)},
		{"11-15 NAS 固件更新", date(2025, 11, 15)},
		{"11/15 发布", date(2025, 11, 15)},
		{"11.15 发布", date(2025, 11, 15)},
		{"11月5日 写日记", date(2025, 11, 5)},
		{"12月31号 跨年", date(2025, 12, 31)},
		{"1月1日 新年", date(2025, 1, 1)}, // reference year, even when already past
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.text, refSaturday))
		})
	}
}

func TestResolveExplicitDateWinsCascade(t *testing.T) {
	// An explicit literal wins no matter what other keywords share the line.
	assert.Equal(t, date(2025, 12, 25), Resolve("2025-12-25 圣诞节 周一", refSaturday))
	assert.Equal(t, date(2025, 12, 25), Resolve("2025-12-25 Monday-tagged text", refSaturday))
	assert.Equal(t, date(2025, 11, 5), Resolve("11月5日 周一", refSaturday))
}

func TestResolveOffsets(t *testing.T) {
	assert.Equal(t, date(2025, 11, 10), Resolve("+2d 跑 RAID 校验", refSaturday))
	assert.Equal(t, date(2025, 11, 15), Resolve("+1w 复盘", refSaturday))
	assert.Equal(t, date(2025, 11, 10), Resolve("+2D 大小写后缀", refSaturday))
	// Offset beats a bare weekday later in the line.
	assert.Equal(t, date(2025, 11, 11), Resolve("+3d 周一开会", refSaturday))
	assert.Equal(t, date(2025, 11, 11), Resolve("+3d Monday", refSaturday))
}

func TestResolveNextWeekWeekday(t *testing.T) {
	// Saturday (index 5) to next Monday (index 0): (7-5)+0 = 2 days, not 9.
	assert.Equal(t, date(2025, 11, 10), Resolve("下周一 客户回访", refSaturday))
	assert.Equal(t, date(2025, 11, 10), Resolve("下礼拜一 开会", refSaturday))
	assert.Equal(t, date(2025, 11, 14), Resolve("下礼拜五 聚餐", refSaturday))
	assert.Equal(t, date(2025, 11, 10), Resolve("next Monday", refSaturday))

	// Monday to next Monday is a full week out.
	monday := date(2025, 11, 10)
	assert.Equal(t, date(2025, 11, 17), Resolve("下周一", monday))
}

func TestResolveBareWeekday(t *testing.T) {
	cases := []struct {
		text string
		want time.Time
	}{
		{"周一 开会", date(2025, 11, 10)},
		{"星期一 开会", date(2025, 11, 10)},
		{"礼拜一 开会", date(2025, 11, 10)},
		{"周五 下午 3 点开会", date(2025, 11, 14)},
		{"周日 休息", date(2025, 11, 9)},
		{"周天 休息", date(2025, 11, 9)},
		{"Friday sync", date(2025, 11, 14)},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.text, refSaturday))
		})
	}
}

func TestResolveBareWeekdayNeverToday(t *testing.T) {
	// Reference is a Saturday; "周六" must land a week out, not today.
	assert.Equal(t, date(2025, 11, 15), Resolve("周六 打扫", refSaturday))
	assert.Equal(t, date(2025, 11, 15), Resolve("Saturday chores", refSaturday))
}

func TestResolveRelativeDayKeywords(t *testing.T) {
	assert.Equal(t, date(2025, 11, 8), Resolve("今天 交水电费", refSaturday))
	assert.Equal(t, date(2025, 11, 9), Resolve("明天 买菜", refSaturday))
	assert.Equal(t, date(2025, 11, 10), Resolve("后天 取快递", refSaturday))
	assert.Equal(t, date(2025, 11, 10), Resolve("day after tomorrow dentist", refSaturday))
	assert.Equal(t, date(2025, 11, 9), Resolve("tomorrow groceries", refSaturday))
}

func TestResolveDefaultsToTomorrow(t *testing.T) {
	assert.Equal(t, date(2025, 11, 9), Resolve("买菜做饭", refSaturday))
	assert.Equal(t, date(2025, 11, 9), Resolve("", refSaturday))
}

func TestResolveDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, date(2025, 11, 10), Resolve("下周一 客户回访", refSaturday))
	}
}

func TestResolveKeepsReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	ref := time.Date(2025, 11, 8, 23, 30, 0, 0, loc)
	got := Resolve("明天 买菜", ref)
	assert.Equal(t, time.Date(2025, 11, 9, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestStripDateToken(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"明天 买菜", "买菜"},
		{"下周一 客户回访", "客户回访"},
		{"周五 下午 3 点开会", "下午 3 点开会"},
		{"+2d 跑 RAID 校验", "跑 RAID 校验"},
		{"11-15 NAS 固件更新", "NAS 固件更新"},
		{"2025-12-25 圣诞聚餐", "圣诞聚餐"},
		{"11月5日 写日记", "写日记"},
		{"买菜做饭", "买菜做饭"},
		// Only a leading token is stripped.
		{"备份 NAS 明天", "备份 NAS 明天"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, StripDateToken(tc.in))
		})
	}
}

func TestParseLines(t *testing.T) {
	text := "明天 买菜\n周五 下午 3 点开会\n+2d 跑 RAID 校验\n下周一 客户回访\n11-15 NAS 固件更新"
	plans, truncated := ParseLines(text, refSaturday)
	require.Len(t, plans, 5)
	assert.False(t, truncated)

	want := []Plan{
		{"买菜", date(2025, 11, 9)},
		{"下午 3 点开会", date(2025, 11, 14)},
		{"跑 RAID 校验", date(2025, 11, 10)},
		{"客户回访", date(2025, 11, 10)},
		{"NAS 固件更新", date(2025, 11, 15)},
	}
	assert.Equal(t, want, plans)
}

func TestParseLinesSkipsBlanks(t *testing.T) {
	plans, _ := ParseLines("明天 买菜\n\n周一 开会\n", refSaturday)
	assert.Len(t, plans, 2)

	plans, _ = ParseLines("   \n  ", refSaturday)
	assert.Empty(t, plans)
}

func TestParseLinesCapsInput(t *testing.T) {
	var b []byte
	for i := 0; i < MaxLines+20; i++ {
		b = append(b, "买菜\n"...)
	}
	plans, truncated := ParseLines(string(b), refSaturday)
	assert.Len(t, plans, MaxLines)
	assert.True(t, truncated)
}

func TestParseLinesDateOnlyLineKeepsOriginal(t *testing.T) {
	plans, _ := ParseLines("明天", refSaturday)
	require.Len(t, plans, 1)
	assert.Equal(t, "明天", plans[0].Content)
	assert.Equal(t, date(2025, 11, 9), plans[0].Due)
}
