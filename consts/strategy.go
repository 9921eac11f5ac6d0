package consts

const (
	// 策略类型
	StrategyZeroInformation = "zero_information"
	StrategyValue           = "value"
	StrategyMomentum        = "momentum"
	StrategyLearned         = "ml"
)

const (
	// 行为代码: 首字母 R/L 决定风险或损失厌恶主导, 次字母 C/O 决定信心档位
	BehaviourRisk           = "R"
	BehaviourLoss           = "L"
	BehaviourRiskCautious   = "RC"
	BehaviourRiskOptimistic = "RO"
	BehaviourLossCautious   = "LC"
	BehaviourLossOptimistic = "LO"
)

const (
	SettleLimit  = "limit"
	SettleMarket = "market"
)

// Strategies lists every strategy name accepted by the agent factory.
var Strategies = []string{
	StrategyZeroInformation,
	StrategyValue,
	StrategyMomentum,
	StrategyLearned,
}

// BehaviourCodes lists every accepted behaviour code.
var BehaviourCodes = []string{
	BehaviourRisk,
	BehaviourLoss,
	BehaviourRiskCautious,
	BehaviourRiskOptimistic,
	BehaviourLossCautious,
	BehaviourLossOptimistic,
}
