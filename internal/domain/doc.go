// Package domain implements the climatology probability engine: given decades
// of daily reanalysis observations for one point it estimates how the weather
// on a calendar day has historically been distributed.
//
// # Data Source
//
// Series come from the NASA POWER daily point API
// (https://power.larc.nasa.gov/api/temporal/daily/point), which serves MERRA-2
// reanalysis values interpolated to the requested coordinates. Parameters used:
//
//	T2M          mean air temperature at 2 m (°C)
//	T2M_MAX      daily maximum temperature at 2 m (°C)
//	T2M_MIN      daily minimum temperature at 2 m (°C)
//	PRECTOTCORR  bias-corrected total precipitation (mm/day)
//	WS2M         mean wind speed at 2 m (m/s)
//
// Missing values:
//
//	POWER encodes gaps as the fill value -999. [Normalize] maps the fill value
//	(and NaN/Inf) to a [Reading] with Present=false, so a gap can never be
//	mistaken for a measured zero. Missing readings are excluded from every
//	statistic and counted separately.
//
// # Windowing
//
// A [TargetDate] is year independent. For every season year Y the window is
// centred on (Y, month, day) and spans ±ToleranceDays, wrapping across month
// and year boundaries: a Dec 30 target with tolerance 5 takes Dec 25–31 of Y
// and Jan 1–4 of Y+1, all attributed to season year Y.
//
// Leap day: a Feb 29 target in a non-leap year is centred on Feb 28.
//
// # Statistics
//
//	Mean/variance   Welford's online algorithm, sample standard deviation (n-1)
//	Percentiles     linear interpolation between order statistics,
//	                rank = p/100 * (n-1), on a sorted copy
//	Exceedance      count(v > T)/n for "above" thresholds, count(v < T)/n for "below"
//	Trend           OLS over yearly means of the windowed sample
//
// # Severity classification
//
// Risk probabilities map to a four-level scale through the policy's cut points
// (default 0.1, 0.3, 0.6):
//
//	p < 0.1 low | p < 0.3 moderate | p < 0.6 high | otherwise extreme
//
// # Purity
//
// [Analyze] and everything it calls are pure functions of their inputs: no
// I/O, no clock, no randomness. Identical inputs produce identical reports.
package domain
