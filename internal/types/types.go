package types

type Side string

type RiskLevel string

type Role string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}
