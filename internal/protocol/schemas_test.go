package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/protocol"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "configs", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

func TestSchemas_ValidateSamples(t *testing.T) {
	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compileSchema(t, "hello_frame.json")
	tickSchema := compileSchema(t, "tick_frame.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "course_w":120,
	  "course_h":80,
	  "station_x":60,
	  "station_z":40,
	  "tick":0
	}`), &hello)
	validate(helloSchema, hello)

	var tick any
	_ = json.Unmarshal([]byte(`{
	  "type":"TICK",
	  "tick":42,
	  "sim_minutes":42.0,
	  "delta_minutes":1.0,
	  "operating_cost":1.25,
	  "treasury":9800.5,
	  "counts":{"total":3,"active":2,"idle":0,"charging":1,"broken":0},
	  "robots":[
	    {"id":"u1","type":"mower","model":"mower_riding","x":10.5,"z":8.25,
	     "state":"moving","resource":63,"resource_max":100,"target_x":14,"target_z":9},
	    {"id":"u2","type":"raker","model":"bunker_rake","x":60,"z":40,
	     "state":"charging","resource":8,"resource_max":70}
	  ],
	  "effects":[
	    {"type":"mower","equipment_id":"u1","x":10.5,"z":8.25,"efficiency":2.5}
	  ]
	}`), &tick)
	validate(tickSchema, tick)
}

func TestSchemas_MatchFrameStructs(t *testing.T) {
	tx, tz := 14.0, 9.0
	frames := []struct {
		schema string
		frame  any
	}{
		{"hello_frame.json", protocol.HelloFrame{
			Type:            protocol.TypeHello,
			ProtocolVersion: protocol.Version,
			CourseW:         120,
			CourseH:         80,
			StationX:        60,
			StationZ:        40,
			Tick:            3,
		}},
		{"tick_frame.json", protocol.TickFrame{
			Type:          protocol.TypeTick,
			Tick:          3,
			SimMinutes:    3,
			DeltaMinutes:  1,
			OperatingCost: 0.4,
			Treasury:      12000,
			Counts:        protocol.FleetCounts{Total: 1, Active: 1},
			Robots: []protocol.RobotInfo{{
				ID:          "u1",
				Type:        "mower",
				Model:       "mower_riding",
				X:           10,
				Z:           8,
				State:       "moving",
				Resource:    63,
				ResourceMax: 100,
				TargetX:     &tx,
				TargetZ:     &tz,
			}},
			Effects: []protocol.EffectInfo{{
				Type:        "mower",
				EquipmentID: "u1",
				X:           10,
				Z:           8,
				Efficiency:  2.5,
			}},
		}},
		// An empty fleet serializes robots as null, which the schema allows.
		{"tick_frame.json", protocol.TickFrame{
			Type:   protocol.TypeTick,
			Counts: protocol.FleetCounts{},
		}},
	}
	for _, tc := range frames {
		b, err := json.Marshal(tc.frame)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if err := compileSchema(t, tc.schema).Validate(v); err != nil {
			t.Fatalf("%s rejects %s: %v", tc.schema, b, err)
		}
	}
}

func TestDecodeBase(t *testing.T) {
	f, err := protocol.DecodeBase([]byte(`{"type":"TICK","tick":9}`))
	if err != nil || f.Type != protocol.TypeTick {
		t.Fatalf("decode = %+v err=%v", f, err)
	}
	if _, err := protocol.DecodeBase([]byte(`not json`)); err == nil {
		t.Fatalf("garbage accepted")
	}
}

func TestSchemas_RejectUnknownState(t *testing.T) {
	tickSchema := compileSchema(t, "tick_frame.json")
	var bad any
	_ = json.Unmarshal([]byte(`{
	  "type":"TICK",
	  "tick":1,
	  "sim_minutes":1,
	  "delta_minutes":1,
	  "operating_cost":0,
	  "treasury":0,
	  "counts":{"total":1,"active":0,"idle":1,"charging":0,"broken":0},
	  "robots":[{"id":"u1","type":"mower","model":"m","x":0,"z":0,
	    "state":"napping","resource":1,"resource_max":1}]
	}`), &bad)
	if err := tickSchema.Validate(bad); err == nil {
		t.Fatalf("unknown robot state accepted")
	}
}
