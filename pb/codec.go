package pb

import (
	"encoding/json"
	"fmt"

	"tetrisgrid/tetris"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// EncodeSnapshot converts a snapshot to a Struct. Field names follow the
// snapshot's JSON form.
func EncodeSnapshot(s tetris.Snapshot) (*structpb.Struct, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot struct: %w", err)
	}
	return st, nil
}

// DecodeSnapshot is the inverse of EncodeSnapshot.
func DecodeSnapshot(st *structpb.Struct) (tetris.Snapshot, error) {
	var s tetris.Snapshot
	b, err := protojson.Marshal(st)
	if err != nil {
		return s, fmt.Errorf("failed to marshal snapshot struct: %w", err)
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}

func EncodeAction(a tetris.Action) *wrapperspb.StringValue {
	return wrapperspb.String(string(a))
}

// DecodeAction returns tetris.ErrUnknownAction for anything outside the command set.
func DecodeAction(v *wrapperspb.StringValue) (tetris.Action, error) {
	return tetris.ParseAction(v.GetValue())
}
