// Copyright 2025 Certen Protocol

package engine

import "time"

func defaultClock() int64 {
	return time.Now().UTC().UnixMilli()
}
