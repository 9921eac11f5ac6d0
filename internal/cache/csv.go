package cache

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/CortexSim/pkg/dataflows"
)

var csvHeader = []string{"Symbol", "Date", "Close", "AdjClose", "Volume"}

// csvStore persists bars as one CSV file per cache key. The file's
// modification time is its storage time.
type csvStore struct {
	dir string
}

func (s *csvStore) path(key string) string {
	return filepath.Join(s.dir, key+".csv")
}

func (s *csvStore) write(key string, bars []*dataflows.Bar) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Symbol,
			b.Date.UTC().Format(time.RFC3339),
			b.Close.String(),
			b.AdjClose.String(),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

func (s *csvStore) read(key string) ([]*dataflows.Bar, time.Time, error) {
	path := s.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, time.Time{}, fmt.Errorf("read %s: empty file", path)
	}

	bars := make([]*dataflows.Bar, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil, time.Time{}, fmt.Errorf("read %s: row %d has %d fields", path, i+1, len(row))
		}
		date, err := time.Parse(time.RFC3339, row[1])
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("read %s: row %d date: %w", path, i+1, err)
		}
		closePx, err := decimal.NewFromString(row[2])
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("read %s: row %d close: %w", path, i+1, err)
		}
		adj, err := decimal.NewFromString(row[3])
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("read %s: row %d adj close: %w", path, i+1, err)
		}
		vol, err := strconv.ParseInt(row[4], 10, 64)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("read %s: row %d volume: %w", path, i+1, err)
		}
		bars = append(bars, &dataflows.Bar{Symbol: row[0], Date: date, Close: closePx, AdjClose: adj, Volume: vol})
	}
	return bars, info.ModTime(), nil
}
