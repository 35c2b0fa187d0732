package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes
const (
	resultInvalid  = "invalid"
	resultOK       = "ok"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

var submissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kavyapath_story_submissions_total",
		Help: "Story and blog submissions by target and outcome",
	},
	[]string{"target", "result"},
)

var moderationTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kavyapath_moderation_actions_total",
		Help: "Moderation actions by kind and outcome",
	},
	[]string{"action", "result"},
)
