// Package fixture reads offline price batches for the sync command.
package fixture

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"folio/internal/application/service"
	"folio/internal/domain/model"
)

type priceFile struct {
	Price []struct {
		Symbol string   `toml:"symbol"`
		Date   any      `toml:"date"` // "2024-01-05" or a bare TOML date
		Close  *float64 `toml:"close"`
		Source string   `toml:"source"`
	} `toml:"price"`
}

// LoadPrices decodes every [[price]] table in path, in file order.
// Every entry needs a close; the values themselves are checked by the
// price service.
func LoadPrices(path string) ([]service.SymbolPrice, error) {
	var f priceFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("load price fixture %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load price fixture %s: %w: unknown key %s", path, model.ErrValidation, undecoded[0])
	}

	out := make([]service.SymbolPrice, 0, len(f.Price))
	for i, p := range f.Price {
		date, err := dateString(p.Date)
		if err != nil {
			return nil, fmt.Errorf("price #%d: %w", i+1, err)
		}
		if p.Close == nil {
			return nil, fmt.Errorf("price #%d: %w", i+1, model.Invalid("close", "missing"))
		}
		out = append(out, service.SymbolPrice{
			Symbol: p.Symbol,
			Date:   date,
			Close:  *p.Close,
			Source: p.Source,
		})
	}
	return out, nil
}

func dateString(v any) (string, error) {
	switch d := v.(type) {
	case string:
		return d, nil
	case time.Time:
		return d.Format(model.DateLayout), nil
	case nil:
		return "", model.Invalid("date", "missing")
	}
	return "", model.Invalid("date", "unsupported value %v", v)
}
