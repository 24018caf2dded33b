package milestone

import (
	"reflect"
	"testing"

	"github.com/tutorkit/tutorkit/pkg/types"
)

func TestParse(t *testing.T) {
	md := "# 里程碑: 神经网络\n\n- [x] 激活函数\n- [ ] 反向传播\n"
	m := Parse(md)
	if m.Title != "神经网络" {
		t.Errorf("title = %q", m.Title)
	}
	want := []types.MilestoneItem{
		{Name: "激活函数", Completed: true},
		{Name: "反向传播", Completed: false},
	}
	if !reflect.DeepEqual(m.Items, want) {
		t.Errorf("items = %+v, want %+v", m.Items, want)
	}
}

func TestParse_UppercaseX(t *testing.T) {
	m := Parse("# 里程碑: Test\n\n- [X] Item\n")
	if len(m.Items) != 1 || !m.Items[0].Completed {
		t.Errorf("items = %+v", m.Items)
	}
}

func TestParse_SkipsNonCheckboxLines(t *testing.T) {
	m := Parse("# 里程碑: Test\n\n- [x] A\n- 没有checkbox\n- [ ] B\n")
	if len(m.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(m.Items))
	}
	if m.Items[0].Name != "A" || m.Items[1].Name != "B" {
		t.Errorf("items = %+v", m.Items)
	}
}

func TestParse_Empty(t *testing.T) {
	m := Parse("")
	if m.Title != "" || len(m.Items) != 0 {
		t.Errorf("m = %+v", m)
	}
}

func TestSerialize(t *testing.T) {
	m := types.Milestones{
		Title: "CSS",
		Items: []types.MilestoneItem{
			{Name: "选择器", Completed: true},
			{Name: "盒模型", Completed: false},
		},
	}
	want := "# 里程碑: CSS\n\n- [x] 选择器\n- [ ] 盒模型\n"
	if got := Serialize(m); got != want {
		t.Errorf("Serialize = %q, want %q", got, want)
	}
}

func TestSerialize_NoItemsNoBlankLine(t *testing.T) {
	m := types.Milestones{Title: "空", Items: []types.MilestoneItem{}}
	if got := Serialize(m); got != "# 里程碑: 空\n" {
		t.Errorf("Serialize = %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []types.Milestones{
		{Title: "神经网络", Items: []types.MilestoneItem{
			{Name: "激活函数", Completed: true},
			{Name: "反向传播", Completed: false},
			{Name: "梯度下降", Completed: true},
		}},
		{Title: "Single", Items: []types.MilestoneItem{{Name: "only", Completed: false}}},
		{Title: "NoItems", Items: []types.MilestoneItem{}},
	}
	for _, m := range cases {
		got := Parse(Serialize(m))
		if !reflect.DeepEqual(got, m) {
			t.Errorf("round trip: got %+v, want %+v", got, m)
		}
	}
}
