package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

var flightHeader = []string{"fid", "day_of_month", "carrier_id", "flight_num", "origin_city", "dest_city", "actual_time", "capacity", "price", "canceled"}

// ReadFlightsCSV parses flights in flightHeader column order. A header row
// is optional; the canceled column may be omitted.
func ReadFlightsCSV(r io.Reader) ([]domain.Flight, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var flights []domain.Flight
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return flights, nil
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(record[0], flightHeader[0]) {
			continue
		}

		f, err := parseFlight(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		flights = append(flights, f)
	}
}

func parseFlight(record []string) (domain.Flight, error) {
	if len(record) < len(flightHeader)-1 || len(record) > len(flightHeader) {
		return domain.Flight{}, fmt.Errorf("expected %d fields, got %d", len(flightHeader), len(record))
	}

	var (
		f   domain.Flight
		err error
	)
	ints := []struct {
		name string
		dst  *int
		idx  int
	}{
		{"day_of_month", &f.DayOfMonth, 1},
		{"actual_time", &f.Duration, 6},
		{"capacity", &f.Capacity, 7},
	}
	if f.ID, err = strconv.ParseInt(record[0], 10, 64); err != nil {
		return f, fmt.Errorf("fid: %w", err)
	}
	for _, field := range ints {
		if *field.dst, err = strconv.Atoi(record[field.idx]); err != nil {
			return f, fmt.Errorf("%s: %w", field.name, err)
		}
	}
	if f.Price, err = strconv.ParseInt(record[8], 10, 64); err != nil {
		return f, fmt.Errorf("price: %w", err)
	}
	if len(record) == len(flightHeader) && record[9] != "" {
		if f.Canceled, err = strconv.ParseBool(record[9]); err != nil {
			return f, fmt.Errorf("canceled: %w", err)
		}
	}

	f.Carrier = record[2]
	f.FlightNumber = record[3]
	f.OriginCity = record[4]
	f.DestCity = record[5]
	return f, nil
}
