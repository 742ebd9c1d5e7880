package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"trackwatch/internal/store"
	"trackwatch/internal/track"
)

func str(s string) *string { return &s }

// recordingStage appends its name to a shared log when run.
type recordingStage struct {
	name string
	log  *[]string
	err  error
}

func (s recordingStage) Name() string { return s.name }

func (s recordingStage) Process(_ context.Context, _ *Song) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

func newSong() *Song {
	st := track.NewState()
	st.Artist = str("Artist")
	st.Track = str("Song")
	return &Song{State: st}
}

func TestPipeline_StagesRunInOrder(t *testing.T) {
	var log []string
	p := New(zap.NewNop(),
		recordingStage{name: "first", log: &log},
		recordingStage{name: "second", log: &log},
		recordingStage{name: "third", log: &log},
	)

	if err := p.Process(context.Background(), newSong()); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(log) != len(want) {
		t.Fatalf("stages run = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("stages run = %v, want %v", log, want)
		}
	}
}

func TestPipeline_FailureAbortsRemainingStages(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	p := New(zap.NewNop(),
		recordingStage{name: "first", log: &log, err: boom},
		recordingStage{name: "second", log: &log},
	)

	err := p.Process(context.Background(), newSong())
	if err == nil {
		t.Fatal("Process() error = nil, want stage failure")
	}
	if !errors.Is(err, boom) {
		t.Errorf("Process() error = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "first") {
		t.Errorf("error %q should name the failed stage", err)
	}
	if len(log) != 1 {
		t.Errorf("stages run = %v, want only the failing stage", log)
	}
}

func TestPipeline_RunStateMachine(t *testing.T) {
	var log []string

	t.Run("completed", func(t *testing.T) {
		p := New(zap.NewNop(), recordingStage{name: "only", log: &log})
		run := p.process(context.Background(), newSong())
		if run.Status != StatusCompleted || run.Err != nil {
			t.Errorf("run = %+v, want completed", run)
		}
	})

	t.Run("failed", func(t *testing.T) {
		p := New(zap.NewNop(), recordingStage{name: "only", log: &log, err: errors.New("boom")})
		run := p.process(context.Background(), newSong())
		if run.Status != StatusFailed || run.FailedStage != "only" || run.Err == nil {
			t.Errorf("run = %+v, want failed at only", run)
		}
	})

	t.Run("empty pipeline completes", func(t *testing.T) {
		p := New(zap.NewNop())
		run := p.process(context.Background(), newSong())
		if run.Status != StatusCompleted {
			t.Errorf("run = %+v, want completed", run)
		}
	})
}

func TestPipeline_CancelledContext(t *testing.T) {
	var log []string
	p := New(zap.NewNop(), recordingStage{name: "only", log: &log})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Process(ctx, newSong()); !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
	if len(log) != 0 {
		t.Errorf("stages run = %v, want none", log)
	}
}

func TestValidateStage(t *testing.T) {
	tests := []struct {
		name      string
		artist    *string
		trackName *string
		want      bool
	}{
		{"both present", str("Artist"), str("Song"), true},
		{"missing artist", nil, str("Song"), false},
		{"missing track", str("Artist"), nil, false},
		{"both missing", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := track.NewState()
			st.Artist = tt.artist
			st.Track = tt.trackName
			song := &Song{State: st}

			if err := (ValidateStage{}).Process(context.Background(), song); err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if song.Flags.IsValid != tt.want {
				t.Errorf("IsValid = %v, want %v", song.Flags.IsValid, tt.want)
			}
		})
	}
}

func TestSeenStage(t *testing.T) {
	seen := store.NewSeenStore(10, 0.01)
	stage := SeenStage{Store: seen}

	song := newSong()
	if err := stage.Process(context.Background(), song); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if song.Flags.IsRepeat {
		t.Error("first sighting flagged as repeat")
	}

	again := newSong()
	if err := stage.Process(context.Background(), again); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !again.Flags.IsRepeat {
		t.Error("second sighting not flagged as repeat")
	}

	// No usable identity: the stage leaves the song alone.
	anonymous := &Song{State: track.NewState()}
	if err := stage.Process(context.Background(), anonymous); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if anonymous.Flags.IsRepeat {
		t.Error("anonymous song flagged as repeat")
	}
}
