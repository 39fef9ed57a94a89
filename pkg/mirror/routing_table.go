package mirror

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// RoutingTable maps an origin host to the host that should serve it instead.
type RoutingTable map[string]string

type RoutingTableRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func ParseRoutingTable(filepath string) (RoutingTable, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("error opening routing table %s: %w", filepath, err)
	}
	defer f.Close()
	return ReadRoutingTable(f)
}

func ReadRoutingTable(r io.Reader) (RoutingTable, error) {
	records := make([]RoutingTableRecord, 0)
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("error decoding routing table: %w", err)
	}
	table := make(RoutingTable, len(records))
	for _, record := range records {
		if record.Key == "" || record.Value == "" {
			return nil, fmt.Errorf("routing table entry with empty key or value: %+v", record)
		}
		table[record.Key] = record.Value
	}
	return table, nil
}
