package timex

import (
	"testing"
	"time"
)

func TestTime_UnixMethods(t *testing.T) {
	// Create a fixed time
	// 创建一个固定时间
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	// Test Unix()
	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() = %v, want %v", tt.Unix(), now.Unix())
	}

	// Test UnixMilli()
	if tt.UnixMilli() != now.UnixMilli() {
		t.Errorf("UnixMilli() = %v, want %v", tt.UnixMilli(), now.UnixMilli())
	}

	// Test UnixMicro()
	if tt.UnixMicro() != now.UnixMicro() {
		t.Errorf("UnixMicro() = %v, want %v", tt.UnixMicro(), now.UnixMicro())
	}

	// Test UnixNano()
	if tt.UnixNano() != now.UnixNano() {
		t.Errorf("UnixNano() = %v, want %v", tt.UnixNano(), now.UnixNano())
	}

	// Verify it's not returning time.Now() by waiting a bit
	// 通过等待一会确认它不是返回 time.Now()
	time.Sleep(10 * time.Millisecond)
	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() changed after sleep, it should be static. got %v, want %v", tt.Unix(), now.Unix())
	}
}

func TestTime_JSON(t *testing.T) {
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	tt := Time(now)

	data, err := tt.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	var back Time
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}
	if !back.Time().Equal(now) {
		t.Errorf("round trip = %v, want %v", back, now)
	}

	if err := back.UnmarshalJSON([]byte("null")); err != nil || !back.IsZero() {
		t.Errorf("null should decode to zero, got %v %v", back, err)
	}
	if err := back.UnmarshalJSON([]byte("1709528767000")); err != nil || back.UnixMilli() != 1709528767000 {
		t.Errorf("millis decode = %v %v", back, err)
	}
}

func TestTime_Scan(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{name: "time", in: time.Unix(100, 0), want: 100},
		{name: "rfc3339", in: "1970-01-01T00:01:40Z", want: 100},
		{name: "sqlite layout", in: []byte("1970-01-01 00:01:40"), want: 100},
		{name: "nil", in: nil, want: time.Time{}.Unix()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			if err := got.Scan(tt.in); err != nil {
				t.Fatal(err)
			}
			if got.Unix() != tt.want {
				t.Errorf("Scan(%v) = %d, want %d", tt.in, got.Unix(), tt.want)
			}
		})
	}

	var bad Time
	if err := bad.Scan(3.5); err == nil {
		t.Error("expected error for float")
	}
}
