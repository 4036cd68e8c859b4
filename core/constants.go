package core

const (
	DataFileExt  = ".log"   // Conventional extension of the live log file
	MergeFileExt = ".merge" // Extension of the compaction target while it is being built
)
