package common

// v0.1.0 - initial Go implementation

const Version = "0.1.0"
