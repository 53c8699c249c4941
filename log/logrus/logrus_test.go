package logrus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/unkn0wn-root/unicache"
)

func TestLogrusLogger(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Debug("set rejected by provider", unicache.Fields{"key": "k"})
	l.Warn("provider get failed", unicache.Fields{"key": "k2"})

	if len(hook.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(hook.Entries))
	}
	last := hook.LastEntry()
	if last.Level != logrus.WarnLevel || last.Message != "provider get failed" {
		t.Fatalf("last entry: %v %q", last.Level, last.Message)
	}
	if last.Data["key"] != "k2" || last.Data["component"] != "unicache" {
		t.Fatalf("last entry data: %v", last.Data)
	}
	if hook.Entries[0].Level != logrus.DebugLevel {
		t.Fatalf("first entry level: %v", hook.Entries[0].Level)
	}
}

func TestLogrusLevelFiltering(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.InfoLevel)
	l := New(base)

	l.Debug("hidden", nil)
	l.Error("shown", nil)
	if len(hook.Entries) != 1 || hook.LastEntry().Message != "shown" {
		t.Fatalf("entries: %v", hook.AllEntries())
	}
}
