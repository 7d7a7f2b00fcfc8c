package evidence

import (
	"encoding/json"
	"os"
	"time"
)

// state is the on-disk form of the store.
type state struct {
	Entries   map[string][]Evidence `json:"entries"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// loadState reads the store from a JSON file. Returns an empty state if the file doesn't exist.
func loadState(filePath string) (*state, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &state{Entries: map[string][]Evidence{}}, nil
		}
		return nil, err
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st.Entries == nil {
		st.Entries = map[string][]Evidence{}
	}
	return &st, nil
}

// saveState writes the store to a JSON file.
func saveState(filePath string, st *state) error {
	st.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
