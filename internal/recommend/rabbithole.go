package recommend

import (
	"strings"
	"time"
)

// RabbitHole is a time-boxed topic the user wants more of.
type RabbitHole struct {
	Topic     string    `json:"topic"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewRabbitHole starts a rabbit hole on topic lasting d from now.
func NewRabbitHole(topic string, d time.Duration, now time.Time) RabbitHole {
	return RabbitHole{Topic: strings.ToLower(strings.TrimSpace(topic)), ExpiresAt: now.Add(d)}
}

// Active reports whether the rabbit hole still applies at now.
func (r RabbitHole) Active(now time.Time) bool {
	return r.Topic != "" && now.Before(r.ExpiresAt)
}

func (r RabbitHole) matches(text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(r.Topic))
}
