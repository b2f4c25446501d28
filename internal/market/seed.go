package market

import (
	"vtrader/internal/model"

	"github.com/shopspring/decimal"
)

// SeedInstruments is the bootstrap instrument set. Prices double as the
// baseline snapshot for risk classification.
func SeedInstruments() []model.Instrument {
	mk := func(symbol, name, sector string, price float64) model.Instrument {
		p := decimal.NewFromFloat(price)
		return model.Instrument{Symbol: symbol, Name: name, Sector: sector, Price: p, BasePrice: p}
	}
	return []model.Instrument{
		mk("TCS", "Tata Consultancy Services", "IT", 3850.25),
		mk("INFY", "Infosys", "IT", 1620.10),
		mk("RELIANCE", "Reliance Industries", "Energy", 2910.40),
		mk("HDFCBANK", "HDFC Bank", "Finance", 1530.75),
		mk("ICICIBANK", "ICICI Bank", "Finance", 1105.00),
		mk("TATAMOTORS", "Tata Motors", "Auto", 975.80),
		mk("SUNPHARMA", "Sun Pharmaceutical", "Pharma", 1480.60),
		mk("LT", "Larsen & Toubro", "Infra", 3600.30),
	}
}
