package service

const (
	HorizonYears   = 100.0 // limite superior del intervalo de busqueda
	ToleranceYears = 0.01  // ~3.65 dias, tolerancia absoluta

	MaxAmount          = 1_000_000_000_000.0 // 1 billón
	MaxRatePercent     = 1000.0              // 1000% anual
	DefaultHistorySize = 20
	MaxHistorySize     = 500
)
