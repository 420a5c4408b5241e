package power

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/couchcryptid/climatology-service/internal/domain"
)

// response is the subset of the POWER daily point JSON document we read.
// Parameter values are keyed by "YYYYMMDD".
type response struct {
	Header struct {
		FillValue *float64 `json:"fill_value"`
	} `json:"header"`
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
	Messages []string `json:"messages"`
}

// DecodeSeries parses a POWER daily point JSON document into a raw series for
// loc. Parameters other than the supported variables are ignored. Records are
// returned in date order.
func DecodeSeries(r io.Reader, loc domain.Location) (domain.RawSeries, error) {
	var resp response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return domain.RawSeries{}, fmt.Errorf("decode power response: %w", err)
	}

	byDate := make(map[string]map[domain.Variable]float64)
	for _, v := range domain.Variables {
		values, ok := resp.Properties.Parameter[string(v)]
		if !ok {
			continue
		}
		for day, x := range values {
			rec, ok := byDate[day]
			if !ok {
				rec = make(map[domain.Variable]float64, len(domain.Variables))
				byDate[day] = rec
			}
			rec[v] = x
		}
	}
	if len(byDate) == 0 {
		if len(resp.Messages) > 0 {
			return domain.RawSeries{}, fmt.Errorf("power response has no data: %s", resp.Messages[0])
		}
		return domain.RawSeries{}, errors.New("power response has no data")
	}

	days := make([]string, 0, len(byDate))
	for day := range byDate {
		days = append(days, day)
	}
	sort.Strings(days)

	records := make([]domain.RawRecord, 0, len(days))
	for _, day := range days {
		d, err := time.Parse("20060102", day)
		if err != nil {
			return domain.RawSeries{}, fmt.Errorf("power date %q: %w", day, err)
		}
		records = append(records, domain.RawRecord{Date: d, Values: byDate[day]})
	}

	sentinel := domain.DefaultMissingSentinel
	if resp.Header.FillValue != nil {
		sentinel = *resp.Header.FillValue
	}
	return domain.RawSeries{Location: loc, Records: records, MissingSentinel: sentinel}, nil
}
