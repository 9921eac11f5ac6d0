package agents

import (
	"fmt"

	"github.com/dyike/CortexSim/consts"
)

// RiskProfile holds the aversion and confidence multipliers that scale an
// agent's demand.
type RiskProfile struct {
	RiskAversion     float64
	LossAversion     float64
	CondLossAversion float64
	Confidence       float64
}

// ParseBehaviour derives a risk profile from a behaviour code. The first
// character picks the dominant aversion and pins the other one to 1; the
// optional second character picks an entry from confidenceLevels.
func ParseBehaviour(code string, riskAversion, lossAversion float64, confidenceLevels [2]float64) (RiskProfile, error) {
	if len(code) < 1 || len(code) > 2 {
		return RiskProfile{}, fmt.Errorf("%w: behaviour %q", ErrInvalidConfiguration, code)
	}

	p := RiskProfile{Confidence: 1}
	switch code[:1] {
	case consts.BehaviourRisk:
		if riskAversion <= 0 {
			return RiskProfile{}, fmt.Errorf("%w: risk aversion must be positive, got %g", ErrInvalidConfiguration, riskAversion)
		}
		p.RiskAversion = riskAversion
		p.LossAversion = 1
		p.CondLossAversion = 1
	case consts.BehaviourLoss:
		if lossAversion <= 0 {
			return RiskProfile{}, fmt.Errorf("%w: loss aversion must be positive, got %g", ErrInvalidConfiguration, lossAversion)
		}
		p.RiskAversion = 1
		p.LossAversion = lossAversion
		p.CondLossAversion = lossAversion
	default:
		return RiskProfile{}, fmt.Errorf("%w: behaviour %q must start with R or L", ErrInvalidConfiguration, code)
	}

	if len(code) == 2 {
		switch code[1] {
		case 'C':
			p.Confidence = confidenceLevels[0]
		case 'O':
			p.Confidence = confidenceLevels[1]
		default:
			return RiskProfile{}, fmt.Errorf("%w: behaviour %q confidence must be C or O", ErrInvalidConfiguration, code)
		}
		if p.Confidence <= 0 {
			return RiskProfile{}, fmt.Errorf("%w: confidence level must be positive, got %g", ErrInvalidConfiguration, p.Confidence)
		}
	}
	return p, nil
}
