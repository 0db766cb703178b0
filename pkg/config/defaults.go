package config

import "github.com/Sumatoshi-tech/paretolearn/pkg/learn"

// Geometry defaults. A negative precision keeps full float64 precision.
const (
	DefaultPrecision = -1
)

// Learner defaults.
const (
	DefaultEpsilon    = learn.DefaultEpsilon
	DefaultDelta      = learn.DefaultDelta
	DefaultMaxSteps   = learn.DefaultMaxSteps
	DefaultOptLevel   = learn.OptArchive
	DefaultParallel   = false
	DefaultWorkers    = 0
	DefaultSimplify   = true
	DefaultLogging    = false
	DefaultLogDir     = ""
	DefaultQueryCache = 0
)

// Mining defaults.
const (
	DefaultMineP0           = learn.DefaultP0
	DefaultMineAlpha        = learn.DefaultAlpha
	DefaultMineNumCells     = learn.DefaultNumCells
	DefaultMineSuccessRatio = learn.DefaultSuccessRatio
	DefaultMineAdaptive     = false
	DefaultMineSeed         = 0
)

// Output defaults.
const (
	DefaultCompression = "deflate"
)

// Observability defaults.
const (
	DefaultLogLevel     = "info"
	DefaultLogJSON      = false
	DefaultOTLPEndpoint = ""
	DefaultOTLPInsecure = false
	DefaultMetricsAddr  = ""
	DefaultSampleRatio  = 1.0
)
