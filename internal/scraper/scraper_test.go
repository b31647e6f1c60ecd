package scraper

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/thu-timetable/internal/course"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/schedule_page.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return string(data)
}

func TestParsePage(t *testing.T) {
	page, err := New().ParsePage(strings.NewReader(loadFixture(t)))
	require.NoError(t, err)

	assert.Equal(t, "2024-2025-2", page.Info.Term)
	assert.Equal(t, "2021010001", page.Info.StudentID)
	assert.Equal(t, "张三", page.Info.Name)

	require.Len(t, page.Courses, 4)
	byID := make(map[string]*course.Record)
	for _, c := range page.Courses {
		byID[c.ID] = c
	}

	want := []*course.Record{
		{
			ID: "30240233", Credit: 3, Name: "操作系统", Teacher: "陈渝",
			Type: course.TypeRequired, TypeLabel: "必修",
			Weeks: "全周", Position: "六教6A017", Weekday: 1, Period: 2,
		},
		{
			ID: "00691042", Credit: 2, Name: "电影赏析", Teacher: "张艺",
			Type: course.TypeElective, TypeLabel: "任选",
			Weeks: "1-16周", Position: "三教2102", Weekday: 2, Period: 3,
		},
		{
			ID: "10720011", Credit: 1, Name: "体育(4)", Teacher: "李四",
			Type: course.TypeRequired, TypeLabel: "必修",
			Weeks: "1-16周", Position: "综体", Weekday: 4, Period: 5,
		},
		{
			ID: "10430342", Credit: 2, Name: "物理实验B(2)", Comment: "第3组",
			Type: course.TypeExperiment, TypeLabel: "实验",
			Weeks: "第1-8周", Position: "九号楼B101", Weekday: 3, Period: 6,
		},
	}
	for _, w := range want {
		t.Run(w.ID, func(t *testing.T) {
			got, ok := byID[w.ID]
			require.True(t, ok, "course %s not extracted", w.ID)
			assert.Equal(t, w, got)
		})
	}

	require.Len(t, page.Skipped, 1)
	assert.Equal(t, "period", page.Skipped[0].Field)
}

func TestParsePage_Strict(t *testing.T) {
	_, err := New().WithStrict(true).ParsePage(strings.NewReader(loadFixture(t)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, course.ErrMalformedEntry))
}

func TestParsePage_MissingMarkers(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		wantMarker string
	}{
		{
			name:       "no init function",
			html:       `<html><head><script>var x = 1;</script></head><body></body></html>`,
			wantMarker: InitFuncMarker,
		},
		{
			name: "no load registration",
			html: `<html><head><script>
function setInitValue()
{
	strHTML = "<a href='x&p_id=2024-2025-2;30240233;0;' target='_blank'>";
}
</script></head></html>`,
			wantMarker: LoadEventMarker,
		},
		{
			name:       "no scripts at all",
			html:       `<html><body><p>会话已过期</p></body></html>`,
			wantMarker: InitFuncMarker,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := New().ParsePage(strings.NewReader(tt.html))
			assert.Nil(t, page)

			var extErr *course.ExtractionError
			require.True(t, errors.As(err, &extErr), "want ExtractionError, got %v", err)
			assert.Equal(t, tt.wantMarker, extErr.Marker)
			assert.True(t, errors.Is(err, course.ErrExtraction))
		})
	}
}

func TestParsePage_EmptySchedule(t *testing.T) {
	html := `<html><head><script>
function setInitValue()
{
	var nav = "<a name='kb'>";
}
Event.observe(window, "load", setInitValue, false);
</script></head><body></body></html>`

	page, err := New().ParsePage(strings.NewReader(html))
	require.NoError(t, err)
	assert.Empty(t, page.Courses)
	assert.Empty(t, page.Skipped)
	assert.Equal(t, "", page.Info.Term)
	assert.Equal(t, "", page.Info.Name)
}

func TestSplitFragments_DropsUnclosedAnchors(t *testing.T) {
	body := `var a = "<a name='top'>";` + "\n" +
		`x = "<a href='#'>menu</a>";` + "\n" +
		`y = "<a id='noise'>";`

	frags := splitFragments(body)
	require.Len(t, frags, 1)
	assert.Equal(t, 2, frags[0].index)
	assert.Contains(t, frags[0].text, "menu")
}

func lectureFragment(fourth, fifth, sixth, slot string) fragment {
	lines := []string{
		` href='/syxk.vsyxkKcapb.do?m=showKcxx&p_id=2024-2025-2;30240233;0;' target='_blank'>";`,
		`	strHTML += "<b>操作系统</b>";`,
		`	strHTML += "；30240233";`,
		`	strHTML += "；陈渝";`,
		`	strHTML += "；` + fourth + `";`,
		`	strHTML += "；` + fifth + `";`,
	}
	if sixth != "" {
		lines = append(lines, `	strHTML += "；`+sixth+`";`)
	}
	lines = append(lines,
		`	strHTML += "</a>";`,
		`	document.getElementById('a`+slot+`').innerHTML += strHTML;`,
	)
	return fragment{index: 1, text: strings.Join(lines, "\n")}
}

func TestFragment_LectureLayouts(t *testing.T) {
	tests := []struct {
		name         string
		frag         fragment
		wantType     course.Type
		wantLabel    string
		wantWeeks    string
		wantPosition string
	}{
		{
			name:         "labelled required",
			frag:         lectureFragment("必修", "1-16周", "六教6A017", "2_1"),
			wantType:     course.TypeRequired,
			wantLabel:    "必修",
			wantWeeks:    "1-16周",
			wantPosition: "六教6A017",
		},
		{
			name:         "labelled restricted elective has no category",
			frag:         lectureFragment("限选", "前八周", "一教101", "2_1"),
			wantType:     "",
			wantLabel:    "限选",
			wantWeeks:    "前八周",
			wantPosition: "一教101",
		},
		{
			name:         "week marker in fourth field shifts fields",
			frag:         lectureFragment("1-16周", "综体", "", "2_1"),
			wantType:     course.TypeRequired,
			wantLabel:    "必修",
			wantWeeks:    "1-16周",
			wantPosition: "综体",
		},
		{
			name:         "week marker with trailing field ignores it",
			frag:         lectureFragment("全周", "西体", "多余", "2_1"),
			wantType:     course.TypeRequired,
			wantLabel:    "必修",
			wantWeeks:    "全周",
			wantPosition: "西体",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, shapeLecture, tt.frag.shape())
			rec, err := tt.frag.parse()
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, rec.Type)
			assert.Equal(t, tt.wantLabel, rec.TypeLabel)
			assert.Equal(t, tt.wantWeeks, rec.Weeks)
			assert.Equal(t, tt.wantPosition, rec.Position)
			assert.Equal(t, "陈渝", rec.Teacher)
			assert.Equal(t, 1, rec.Weekday)
			assert.Equal(t, 2, rec.Period)
		})
	}
}

func TestFragment_Malformed(t *testing.T) {
	lab := func(rest string) fragment {
		return fragment{index: 4, text: ` href='/x?m=showSyxx&p_id=10430342' target='_blank'><b><font color='blue'>物理实验B(2)</font></b></a>` + rest}
	}

	tests := []struct {
		name      string
		frag      fragment
		wantField string
	}{
		{"lecture period out of range", lectureFragment("必修", "全周", "六教", "7_1"), "period"},
		{"lecture weekday out of range", lectureFragment("必修", "全周", "六教", "1_8"), "weekday"},
		{"lecture slot not digits", lectureFragment("必修", "全周", "六教", "x_y"), "period"},
		{"lecture slot truncated", lectureFragment("必修", "全周", "六教", "1"), "weekday"},
		{"labelled lecture missing position", lectureFragment("必修", "全周", "", "1_1"), "position"},
		{"lecture empty teacher", fragment{index: 1, text: strings.Replace(lectureFragment("必修", "全周", "六教", "1_1").text, "；陈渝", "；", 1)}, "record"},
		{"lecture without p_id", fragment{index: 1, text: strings.Replace(lectureFragment("必修", "全周", "六教", "1_1").text, "&p_id=", "&q=", 1)}, "course_id"},
		{"lab too few fields", lab(`<font>(九号楼；全周</font>`), "fields"},
		{"lab no position parenthesis", lab(`<font>九号楼；全周；getElementById('a1_1') 分组：1)</font>`), "position"},
		{"lab no comment", lab(`<font>(九号楼；全周；getElementById('a1_1') 分组1)</font>`), "comment"},
		{"lab no slot", lab(`<font>(九号楼；全周；分组：1)</font>`), "slot"},
		{"lab name not closed", fragment{index: 4, text: ` href='/x?m=showSyxx&p_id=10430342' target='_blank'><b><font color='blue'>物理实验</a>`}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := tt.frag.parse()
			assert.Nil(t, rec)

			var merr *course.MalformedEntryError
			require.True(t, errors.As(err, &merr), "want MalformedEntryError, got %v", err)
			assert.Equal(t, tt.wantField, merr.Field)
			assert.Equal(t, tt.frag.index, merr.Index)
		})
	}
}

func TestFragment_Lab(t *testing.T) {
	frag := fragment{
		index: 2,
		text: ` href='/x?m=showSyxx&p_id=10430342' target='_blank'><b><font color='blue'>物理实验B(2)</font></b></a>` +
			`<font color='blue'>(九号楼B101；第1-8周；<span onclick="document.getElementById('a4_5')">分组：第3组)</font>";`,
	}
	require.Equal(t, shapeLab, frag.shape())

	rec, err := frag.parse()
	require.NoError(t, err)
	assert.Equal(t, "10430342", rec.ID)
	assert.Equal(t, 2, rec.Credit)
	assert.Equal(t, "物理实验B(2)", rec.Name)
	assert.Equal(t, "第3组", rec.Comment)
	assert.Empty(t, rec.Teacher)
	assert.Equal(t, course.TypeExperiment, rec.Type)
	assert.Equal(t, "九号楼B101", rec.Position)
	assert.Equal(t, "第1-8周", rec.Weeks)
	assert.Equal(t, 5, rec.Weekday)
	assert.Equal(t, 4, rec.Period)
}
