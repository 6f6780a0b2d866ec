// Copyright 2025 Certen Protocol
//
// New factors out the "[Prefix] " + log.LstdFlags convention repeated
// across the engine and store constructors.

package logging

import "log"

// New returns a *log.Logger writing to the process's default log
// destination, tagged with prefix in brackets.
func New(prefix string) *log.Logger {
	return log.New(log.Writer(), "["+prefix+"] ", log.LstdFlags)
}
