package anchor

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"

	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

type Risk struct {
	Score    float64  `json:"score"`
	Level    string   `json:"level"`
	Reasons  []string `json:"reasons"`
	Decision string   `json:"-"`
}

// ScoreRisk derives a deterministic demo risk score from the payload
// hash. Only high-risk payloads are denied.
func ScoreRisk(payloadHash string) Risk {
	var score float64
	if len(payloadHash) > 0 {
		score = float64(payloadHash[0]%100) / 100
	}

	level := RiskHigh
	switch {
	case score < 0.33:
		level = RiskLow
	case score < 0.66:
		level = RiskMedium
	}

	decision := DecisionAllow
	if level == RiskHigh {
		decision = DecisionDeny
	}

	return Risk{
		Score:    score,
		Level:    level,
		Reasons:  []string{"demo model - deterministic scoring"},
		Decision: decision,
	}
}
