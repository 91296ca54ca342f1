// meta/meta.go
package meta

// GoRoutines defines the default number of trial workers.
const GoRoutines = 8

// MinTrials is the lowest trial count a simulation accepts.
const MinTrials = 100

// MaxTrials is the highest trial count a simulation accepts.
const MaxTrials = 100000

// DefaultTrials is used when a configuration leaves the trial count unset.
const DefaultTrials = 1000
