package fars

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseGKey_BitfieldAndAbsentFields(t *testing.T) {
	key, err := ParseGKey("alice:0:1000:2000:5:0")
	if err != nil {
		t.Fatalf("ParseGKey returned error: %v", err)
	}
	want := GKey{
		Username:            "alice",
		StartDate:           time.Unix(1000, 0),
		EndDate:             time.Unix(2000, 0),
		UnlockDoor:          true,
		RestrictKeys:        false,
		DisableSaunaHeating: true,
	}
	if key != want {
		t.Fatalf("ParseGKey = %+v, want %+v", key, want)
	}

	data, err := json.Marshal(key)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "group_name") || strings.Contains(string(data), "code") {
		t.Fatalf("json = %s, want group_name and code omitted", data)
	}
}

func TestParseGKey_Flags(t *testing.T) {
	cases := []struct {
		flags                 string
		unlock, restrict, nos bool
	}{
		{"0", false, false, false},
		{"1", false, false, true},
		{"2", false, true, false},
		{"4", true, false, false},
		{"7", true, true, true},
	}
	for _, tc := range cases {
		key, err := ParseGKey("u:g:0:0:" + tc.flags + ":c")
		if err != nil {
			t.Fatalf("ParseGKey(flags=%s) returned error: %v", tc.flags, err)
		}
		if key.UnlockDoor != tc.unlock || key.RestrictKeys != tc.restrict || key.DisableSaunaHeating != tc.nos {
			t.Fatalf("flags %s decoded as %+v", tc.flags, key)
		}
		if key.GroupName != "g" || key.Code != "c" {
			t.Fatalf("group/code = %q/%q, want g/c", key.GroupName, key.Code)
		}
	}
}

func TestParseGKeys_SkipsBlankLinesAndReportsBadLines(t *testing.T) {
	keys, err := ParseGKeys("alice:0:1:2:0:0\r\n\nbob:team:3:4:4:9999\n")
	if err != nil {
		t.Fatalf("ParseGKeys returned error: %v", err)
	}
	if len(keys) != 2 || keys[0].Username != "alice" || keys[1].Code != "9999" {
		t.Fatalf("ParseGKeys = %+v", keys)
	}

	if keys, err := ParseGKeys(""); err != nil || len(keys) != 0 {
		t.Fatalf("ParseGKeys(empty) = %v, %v; want none", keys, err)
	}

	_, err = ParseGKeys("alice:0:1:2:0:0\nbroken line\n")
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("ParseGKeys error = %v, want line 2 error", err)
	}
	for _, bad := range []string{"a:0:x:2:0:0", "a:0:1:y:0:0", "a:0:1:2:z:0"} {
		if _, err := ParseGKey(bad); err == nil {
			t.Fatalf("ParseGKey(%q) returned nil error", bad)
		}
	}
}
