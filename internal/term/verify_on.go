//go:build verify

package term

// verifyBuild enables the expensive consistency checks in Equal.
const verifyBuild = true
