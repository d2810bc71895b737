package models

// BotAssessment is the bot-likelihood verdict for a single post or account.
// Stateless: recomputed on every call, never cached by the engine.
type BotAssessment struct {
	SubjectID string   `json:"subject_id"`
	BotScore  float64  `json:"bot_score"`
	IsBot     bool     `json:"is_bot"`
	Flags     []string `json:"flags"`
}

// BotFilterStats summarizes one bot-filter pass over a batch.
type BotFilterStats struct {
	Total         int            `json:"total"`
	BotCount      int            `json:"bot_count"`
	BotPercentage float64        `json:"bot_percentage"`
	AvgBotScore   float64        `json:"avg_bot_score"`
	CommonFlags   map[string]int `json:"common_flags,omitempty"`
}

// BotRiskStats buckets a batch by bot-score risk band without filtering it.
type BotRiskStats struct {
	Total       int            `json:"total"`
	AvgBotScore float64        `json:"avg_bot_score"`
	HighRisk    int            `json:"high_risk"`   // score >= 70
	MediumRisk  int            `json:"medium_risk"` // 50 <= score < 70
	LowRisk     int            `json:"low_risk"`    // score < 50
	CommonFlags map[string]int `json:"common_flags,omitempty"`
}
