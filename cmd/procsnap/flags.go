package main

import "time"

// Flag structs to decouple cobra from logic for testing.

type ListFlags struct {
	Filter string
	Format string
	Output string
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}

type TreeFlags struct {
	PID int32
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}

type ActionFlags struct {
	PIDs []int32
	Tree bool
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}

type ExportFlags struct {
	Format string
	Filter string
	Output string
	// Remote daemon connection
	APIUrl     string
	APITimeout time.Duration
}

type ServeFlags struct {
	ConfigPath string
}
