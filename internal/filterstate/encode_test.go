package filterstate

import "testing"

func TestEncodeCompact(t *testing.T) {
	reg := testRegistry()
	tests := []struct {
		name string
		q    string
		want string
	}{
		{"range", "pv=10-20", "pv:10-20"},
		{"disjoint range", "pv=1-3,7-9", "pv:1-3,7-9"},
		{"simple dropdown", "type=Mek,Vehicle", "type:Mek,Vehicle"},
		{"multistate states", "faction=Liao faction&=Marik faction!=Davion", "faction:Davion!,Liao,Marik."},
		{"count suffix", "equipment=ac/2:2", "equipment:ac%2F2~2"},
		{"fields sorted and piped", "type=Mek pv>=10", "pv:10-99|type:Mek"},
		{"escaped value", `type="Battle Armor"`, "type:Battle+Armor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := stateFor(t, tt.q)
			if got := EncodeCompact(state, reg, "as"); got != tt.want {
				t.Errorf("EncodeCompact(%q) = %q, want %q", tt.q, got, tt.want)
			}
		})
	}
}

func TestEncodeCompact_SkipsUninteracted(t *testing.T) {
	state := State{"pv": &FieldState{}}
	if got := EncodeCompact(state, testRegistry(), "as"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
