package soundcue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/finlyapp/finly-backend/pkg/enums"
	pkgerrors "github.com/finlyapp/finly-backend/pkg/errors"
	"github.com/finlyapp/finly-backend/pkg/logger"
	"github.com/finlyapp/finly-backend/pkg/metrics"
)

// Waveform names the oscillator shape a tone is rendered with.
type Waveform string

const (
	WaveSine     Waveform = "sine"
	WaveSquare   Waveform = "square"
	WaveTriangle Waveform = "triangle"
	WaveSawtooth Waveform = "sawtooth"
)

// Profile is the per-personality rendering envelope.
type Profile struct {
	BaseFrequency float64
	Waveform      Waveform
	Volume        float64
	Attack        time.Duration
	ReleaseFactor float64
	NoteGap       time.Duration
	// FirstNoteOnly collapses every pattern to its opening note.
	FirstNoteOnly bool
}

// Pattern is the per-type note sequence, expressed as multipliers of the
// personality's base frequency.
type Pattern struct {
	Multipliers  []float64
	NoteDuration time.Duration
}

// Tone is one fully resolved note handed to the audio sink.
type Tone struct {
	Frequency float64
	Duration  time.Duration
	Waveform  Waveform
	Volume    float64
	Attack    time.Duration
	Release   time.Duration
}

// Sink renders tones. Implementations must not block past the tone's duration.
type Sink interface {
	PlayTone(ctx context.Context, tone Tone) error
}

var profiles = map[enums.Personality]Profile{
	enums.PersonalityFriendly: {
		BaseFrequency: 523.25,
		Waveform:      WaveSine,
		Volume:        0.30,
		Attack:        15 * time.Millisecond,
		ReleaseFactor: 0.85,
		NoteGap:       40 * time.Millisecond,
	},
	enums.PersonalityCoach: {
		BaseFrequency: 440.00,
		Waveform:      WaveSquare,
		Volume:        0.35,
		Attack:        5 * time.Millisecond,
		ReleaseFactor: 0.70,
		NoteGap:       25 * time.Millisecond,
	},
	enums.PersonalitySassy: {
		BaseFrequency: 587.33,
		Waveform:      WaveTriangle,
		Volume:        0.32,
		Attack:        10 * time.Millisecond,
		ReleaseFactor: 0.60,
		NoteGap:       30 * time.Millisecond,
	},
	enums.PersonalityZen: {
		BaseFrequency: 396.00,
		Waveform:      WaveSine,
		Volume:        0.18,
		Attack:        60 * time.Millisecond,
		ReleaseFactor: 0.95,
		NoteGap:       80 * time.Millisecond,
		FirstNoteOnly: true,
	},
}

var patterns = map[enums.NotificationType]Pattern{
	enums.NotificationTypeBudgetAlert: {
		Multipliers:  []float64{1.0, 0.84},
		NoteDuration: 160 * time.Millisecond,
	},
	enums.NotificationTypeSubscription: {
		Multipliers:  []float64{1.0, 1.0},
		NoteDuration: 140 * time.Millisecond,
	},
	enums.NotificationTypeAchievement: {
		Multipliers:  []float64{1.0, 1.26, 1.5},
		NoteDuration: 120 * time.Millisecond,
	},
	enums.NotificationTypeTip: {
		Multipliers:  []float64{1.0, 1.12},
		NoteDuration: 110 * time.Millisecond,
	},
	enums.NotificationTypeSystem: {
		Multipliers:  []float64{1.0},
		NoteDuration: 150 * time.Millisecond,
	},
	enums.NotificationTypeWarning: {
		Multipliers:  []float64{1.0, 0.75, 1.0},
		NoteDuration: 170 * time.Millisecond,
	},
}

const (
	defaultPersonality = enums.PersonalityFriendly
	defaultType        = enums.NotificationTypeSystem
)

// Player renders cues for one user. Play requests arriving while a cue is
// still sounding are dropped rather than overlapped.
type Player struct {
	personality enums.Personality
	sink        Sink
	logg        *logger.Logger
	metrics     *metrics.NotifierMetrics
	now         func() time.Time

	mu        sync.Mutex
	busyUntil time.Time
}

// PlayerOptions carries the player's collaborators. Metrics and Now are
// optional.
type PlayerOptions struct {
	Personality enums.Personality
	Sink        Sink
	Logger      *logger.Logger
	Metrics     *metrics.NotifierMetrics
	Now         func() time.Time
}

// NewPlayer builds a cue player bound to one personality.
func NewPlayer(opts PlayerOptions) (*Player, error) {
	if opts.Sink == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "audio sink required")
	}
	if opts.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if !opts.Personality.IsValid() {
		opts.Personality = defaultPersonality
	}
	return &Player{
		personality: opts.Personality,
		sink:        opts.Sink,
		logg:        opts.Logger,
		metrics:     opts.Metrics,
		now:         opts.Now,
	}, nil
}

// Plan resolves the tone sequence for a notification type. Unknown types fall
// back to the system pattern.
func Plan(notificationType enums.NotificationType, personality enums.Personality) []Tone {
	profile, ok := profiles[personality]
	if !ok {
		profile = profiles[defaultPersonality]
	}
	pattern, ok := patterns[notificationType]
	if !ok {
		pattern = patterns[defaultType]
	}

	multipliers := pattern.Multipliers
	if profile.FirstNoteOnly && len(multipliers) > 1 {
		multipliers = multipliers[:1]
	}

	tones := make([]Tone, 0, len(multipliers))
	for _, multiplier := range multipliers {
		tones = append(tones, Tone{
			Frequency: profile.BaseFrequency * multiplier,
			Duration:  pattern.NoteDuration,
			Waveform:  profile.Waveform,
			Volume:    profile.Volume,
			Attack:    profile.Attack,
			Release:   time.Duration(float64(pattern.NoteDuration) * profile.ReleaseFactor),
		})
	}
	return tones
}

// CueDuration is the wall time a tone sequence occupies, gaps included.
func CueDuration(tones []Tone, personality enums.Personality) time.Duration {
	profile, ok := profiles[personality]
	if !ok {
		profile = profiles[defaultPersonality]
	}
	var total time.Duration
	for i, tone := range tones {
		total += tone.Duration
		if i < len(tones)-1 {
			total += profile.NoteGap
		}
	}
	return total
}

// Play renders the cue for the type, or drops it if one is already sounding.
func (p *Player) Play(ctx context.Context, notificationType enums.NotificationType) error {
	tones := Plan(notificationType, p.personality)
	total := CueDuration(tones, p.personality)

	p.mu.Lock()
	now := p.now()
	if now.Before(p.busyUntil) {
		p.mu.Unlock()
		p.metrics.IncSoundDropped()
		return nil
	}
	p.busyUntil = now.Add(total)
	p.mu.Unlock()

	for _, tone := range tones {
		if err := p.sink.PlayTone(ctx, tone); err != nil {
			p.release()
			p.logg.Warn(ctx, fmt.Sprintf("audio sink failed: %v", err))
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "play sound cue")
		}
	}

	p.metrics.IncSoundPlayed(string(p.personality))
	return nil
}

// release drops the overlap guard early, after a sink failure.
func (p *Player) release() {
	p.mu.Lock()
	p.busyUntil = p.now()
	p.mu.Unlock()
}

// LogSink is a Sink that records tones to the structured log. Headless
// deployments use it so cue planning stays observable without an audio
// device.
type LogSink struct {
	logg *logger.Logger
}

func NewLogSink(logg *logger.Logger) *LogSink {
	return &LogSink{logg: logg}
}

func (s *LogSink) PlayTone(ctx context.Context, tone Tone) error {
	if s.logg == nil {
		return nil
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"frequency_hz": tone.Frequency,
		"duration_ms":  tone.Duration.Milliseconds(),
		"waveform":     string(tone.Waveform),
	})
	s.logg.Debug(logCtx, "tone rendered")
	return nil
}
