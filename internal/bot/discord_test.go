package bot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestMessageFromEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   *discordgo.MessageCreate
		ok   bool
	}{
		{"nil", nil, false},
		{"bot author", &discordgo.MessageCreate{Message: &discordgo.Message{Content: "oi", Author: &discordgo.User{ID: "1", Bot: true}}}, false},
		{"empty", &discordgo.MessageCreate{Message: &discordgo.Message{Content: "  ", Author: &discordgo.User{ID: "1"}}}, false},
		{"user", &discordgo.MessageCreate{Message: &discordgo.Message{ChannelID: "c", Content: " /gastei ", Author: &discordgo.User{ID: "1", Username: "bruno"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := messageFromEvent(tt.ev)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (msg.ChatID != "c" || msg.UserID != "1" || msg.UserName != "bruno" || msg.Text != " /gastei ") {
				t.Fatalf("msg = %+v", msg)
			}
		})
	}
}

func TestNewDiscord_DispatchesEventsInOrder(t *testing.T) {
	d, err := NewDiscord("token", nil)
	if err != nil {
		t.Fatalf("NewDiscord: %v", err)
	}
	if !d.session.SyncEvents {
		t.Fatal("events must be dispatched synchronously so each user's messages stay ordered")
	}
}

func TestRenderOptions(t *testing.T) {
	if got := RenderOptions("oi", nil); got != "oi" {
		t.Fatalf("got %q", got)
	}
	if got := RenderOptions("Confere", []string{"Sim", "Não"}); got != "Confere\n`Sim` | `Não`" {
		t.Fatalf("got %q", got)
	}
}

func TestConsole(t *testing.T) {
	var out bytes.Buffer
	r := NewRouter(&fakeReports{}, &fakeEntries{}, NewConsole(&out), "/", nil)
	in := strings.NewReader("/gastei\ndespesa\n")
	if err := RunConsole(context.Background(), in, "console", "me", r.Handle); err != nil {
		t.Fatalf("RunConsole: %v", err)
	}
	if !strings.Contains(out.String(), "E quanto custou essa brincadeira?") {
		t.Fatalf("output = %q", out.String())
	}
}
