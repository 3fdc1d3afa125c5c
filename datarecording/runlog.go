package datarecording

import (
	"os"
	"strings"
	"time"
)

const timeFormat = "2006-01-02 15:04:05.000000000"

type runInfo struct {
	Run      string
	Property string
	Value    string
}

// A RunLog records how a run was launched and when it started and ended.
type RunLog struct {
	tableName string
	run       string
	recorder  DataRecorder
	entries   []runInfo
}

// NewRunLog creates a RunLog that writes into the run_info table.
func NewRunLog(recorder DataRecorder, run string) *RunLog {
	l := &RunLog{
		tableName: "run_info",
		run:       run,
		recorder:  recorder,
	}

	recorder.CreateTable(l.tableName, runInfo{})

	return l
}

// Start records the start time, the command and the working directory.
func (l *RunLog) Start() {
	l.Set("Start Time", time.Now().Format(timeFormat))
	l.Set("Command", strings.Join(os.Args, " "))

	if wd, err := os.Getwd(); err == nil {
		l.Set("Working Directory", wd)
	}
}

// Set records a property of the run.
func (l *RunLog) Set(property, value string) {
	l.entries = append(l.entries, runInfo{
		Run:      l.run,
		Property: property,
		Value:    value,
	})
}

// End records the end time and writes the properties.
func (l *RunLog) End() {
	l.Set("End Time", time.Now().Format(timeFormat))

	for _, entry := range l.entries {
		l.recorder.InsertData(l.tableName, entry)
	}

	l.entries = nil

	l.recorder.Flush()
}
