package recovery

import (
	"time"

	"github.com/GriffinCanCode/Sentinel/backend/internal/failure"
	"github.com/GriffinCanCode/Sentinel/backend/internal/shared/id"
)

// Strategy is the abstract remediation approach
type Strategy string

const (
	StrategyRetry    Strategy = "retry"
	StrategyFallback Strategy = "fallback"
	StrategyRestart  Strategy = "restart"
	StrategyReset    Strategy = "reset"
	StrategyManual   Strategy = "manual"
	StrategyIgnore   Strategy = "ignore"
)

// Action is the concrete remediation implementation
type Action string

const (
	ActionReconnect      Action = "reconnect"
	ActionReloadConfig   Action = "reload_config"
	ActionClearCache     Action = "clear_cache"
	ActionResetState     Action = "reset_state"
	ActionRestartService Action = "restart_service"
	ActionSwitchEndpoint Action = "switch_endpoint"
	ActionCustom         Action = "custom"
)

// Result records one recovery attempt. Produced once, appended to history,
// never mutated afterward.
type Result struct {
	ID        id.RecoveryID          `json:"id"`
	Success   bool                   `json:"success"`
	Strategy  Strategy               `json:"strategy"`
	Action    Action                 `json:"action"`
	Attempts  int                    `json:"attempts"`
	Duration  time.Duration          `json:"duration_ms"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// newResult stamps identity and timestamp on a result record
func newResult(success bool, strategy Strategy, action Action, attempts int, duration time.Duration, message string) Result {
	return Result{
		ID:        id.NewRecoveryID(),
		Success:   success,
		Strategy:  strategy,
		Action:    action,
		Attempts:  attempts,
		Duration:  duration,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Statistics aggregates the manager's recovery history
type Statistics struct {
	TotalAttempts        int                  `json:"total_attempts"`
	SuccessfulRecoveries int                  `json:"successful_recoveries"`
	FailedRecoveries     int                  `json:"failed_recoveries"`
	SuccessRatePercent   float64              `json:"success_rate_percent"`
	ByStrategy           map[Strategy]int         `json:"by_strategy"`
	ByCategory           map[failure.Category]int `json:"by_category"`
	Recent               []Result                 `json:"recent_recoveries"`
}
