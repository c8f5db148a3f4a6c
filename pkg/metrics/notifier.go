package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotifierMetrics records delivery pipeline outcomes.
type NotifierMetrics struct {
	popupsShown     *prometheus.CounterVec
	popupsPersisted *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	soundsPlayed    *prometheus.CounterVec
	soundsDropped   prometheus.Counter
	displaySeconds  prometheus.Histogram
}

// NewNotifierMetrics registers the notifier metrics on the provided registerer.
func NewNotifierMetrics(reg prometheus.Registerer) *NotifierMetrics {
	if reg == nil {
		return &NotifierMetrics{}
	}
	popupsShown := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_popups_shown",
		Help: "Popups promoted to the showing slot.",
	}, []string{"type"})
	popupsPersisted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_popups_persisted",
		Help: "Notification rows written for shown popups.",
	}, []string{"type"})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_persist_failures",
		Help: "Best-effort persistence writes that failed.",
	}, []string{"type"})
	soundsPlayed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_sound_cues_played",
		Help: "Sound cues rendered per personality.",
	}, []string{"personality"})
	soundsDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_sound_cues_dropped",
		Help: "Sound cues dropped by the overlap guard.",
	})
	displaySeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "notifier_popup_display_seconds",
		Help:    "Time a popup spent in the showing slot.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(popupsShown, popupsPersisted, persistFailures, soundsPlayed, soundsDropped, displaySeconds)
	return &NotifierMetrics{
		popupsShown:     popupsShown,
		popupsPersisted: popupsPersisted,
		persistFailures: persistFailures,
		soundsPlayed:    soundsPlayed,
		soundsDropped:   soundsDropped,
		displaySeconds:  displaySeconds,
	}
}

// IncShown increments the shown counter for the given notification type.
func (m *NotifierMetrics) IncShown(notificationType string) {
	if m == nil || m.popupsShown == nil {
		return
	}
	m.popupsShown.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

// IncPersisted increments the persisted counter for the given type.
func (m *NotifierMetrics) IncPersisted(notificationType string) {
	if m == nil || m.popupsPersisted == nil {
		return
	}
	m.popupsPersisted.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

// IncPersistFailure increments the persist failure counter for the given type.
func (m *NotifierMetrics) IncPersistFailure(notificationType string) {
	if m == nil || m.persistFailures == nil {
		return
	}
	m.persistFailures.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

// IncSoundPlayed increments the sound counter for the given personality.
func (m *NotifierMetrics) IncSoundPlayed(personality string) {
	if m == nil || m.soundsPlayed == nil {
		return
	}
	m.soundsPlayed.WithLabelValues(normalizeLabel(personality)).Inc()
}

// IncSoundDropped counts a cue suppressed by the overlap guard.
func (m *NotifierMetrics) IncSoundDropped() {
	if m == nil || m.soundsDropped == nil {
		return
	}
	m.soundsDropped.Inc()
}

// ObserveDisplay records how long a popup was showing.
func (m *NotifierMetrics) ObserveDisplay(duration time.Duration) {
	if m == nil || m.displaySeconds == nil {
		return
	}
	m.displaySeconds.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
