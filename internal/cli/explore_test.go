package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/spidermap/pkg/clusters"
	"github.com/matzehuels/spidermap/pkg/config"
)

func newTestExplore(t *testing.T, sizes ...int) *exploreModel {
	t.Helper()
	set, err := clusters.Load(writeClusters(t, sizes...))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	m := newExploreModel(set, cfg.View, cfg.SpiderOptions(), log.New(&strings.Builder{}))
	t.Cleanup(m.Close)
	return m
}

func press(m *exploreModel, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

func runeKey(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
)

func TestExploreOpenAndPick(t *testing.T) {
	m := newTestExplore(t, 3, 5)

	press(m, keyTab, keyEnter)
	cur := m.ctrl.Current()
	if cur == nil || cur.ID != "c1" {
		t.Fatalf("open cluster = %v, want c1", cur)
	}
	if got := len(m.ctrl.Proxies()); got != 5 {
		t.Fatalf("proxies = %d, want 5", got)
	}
	if !strings.Contains(m.View(), "c1 open (circle)") {
		t.Errorf("view does not show the open cluster:\n%s", m.View())
	}

	press(m, runeKey("2"))
	if m.ctrl.IsOpen() {
		t.Error("cluster still open after picking a member")
	}
	if m.picked == nil || m.picked.ID != "c1-1" || m.pickedFrom != "c1" {
		t.Errorf("picked = %v from %q, want c1-1 from c1", m.picked, m.pickedFrom)
	}
}

func TestExploreCollapse(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{"map click", keyEsc},
		{"pan", keyLeft},
		{"zoom", runeKey("+")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestExplore(t, 4)
			press(m, keyEnter)
			if !m.ctrl.IsOpen() {
				t.Fatal("cluster did not open")
			}
			press(m, tt.key)
			if m.ctrl.IsOpen() {
				t.Error("cluster still open")
			}
		})
	}
}

func TestExploreHover(t *testing.T) {
	m := newTestExplore(t, 2)
	press(m, keyEnter)
	proxies := m.ctrl.Proxies()
	base, hover := m.ctrl.ConnectorStyles()

	style := func(i int) string {
		l, ok := m.m.Line(proxies[i].Connector)
		if !ok {
			t.Fatalf("connector %d missing", i)
		}
		return l.Style.Color
	}

	press(m, runeKey("h"))
	if style(0) != hover.Color || style(1) != base.Color {
		t.Errorf("after first hover: %s, %s", style(0), style(1))
	}
	press(m, runeKey("h"))
	if style(0) != base.Color || style(1) != hover.Color {
		t.Errorf("after second hover: %s, %s", style(0), style(1))
	}
	press(m, runeKey("h"))
	if style(0) != base.Color || style(1) != base.Color {
		t.Errorf("after leaving: %s, %s", style(0), style(1))
	}
	if m.m.Hovered() != "" {
		t.Errorf("pointer still on %s", m.m.Hovered())
	}
}

func TestExplorePickOutOfRange(t *testing.T) {
	m := newTestExplore(t, 2)
	press(m, keyEnter, runeKey("5"))
	if !m.ctrl.IsOpen() {
		t.Error("cluster collapsed on a missing member")
	}
	if !strings.Contains(m.notice, "no member 5") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestExploreCursorWraps(t *testing.T) {
	m := newTestExplore(t, 2, 2, 2)
	press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	press(m, keyTab)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestExploreQuit(t *testing.T) {
	m := newTestExplore(t, 2)
	_, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestExploreSinglesOnly(t *testing.T) {
	m := newTestExplore(t)
	if len(m.clusters) != 0 {
		t.Fatalf("clusters = %d, want 0", len(m.clusters))
	}

	press(m, keyTab, keyEnter)
	if m.ctrl.IsOpen() {
		t.Error("opened a cluster with none on the map")
	}
	if m.notice != "no clusters" {
		t.Errorf("notice = %q", m.notice)
	}
	if !strings.Contains(m.View(), "no clusters") {
		t.Errorf("view does not show the notice:\n%s", m.View())
	}
}

func TestExploreReopenIsNoop(t *testing.T) {
	m := newTestExplore(t, 3)
	press(m, keyEnter)
	before := m.ctrl.Proxies()

	press(m, keyEnter)
	if !m.ctrl.IsOpen() {
		t.Fatal("cluster closed on a second enter")
	}
	if m.notice != "" {
		t.Errorf("notice = %q, want none", m.notice)
	}
	after := m.ctrl.Proxies()
	if len(after) != len(before) {
		t.Fatalf("proxies = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i].Marker != before[i].Marker || after[i].Connector != before[i].Connector {
			t.Errorf("proxy %d was recreated", i)
		}
	}
}
