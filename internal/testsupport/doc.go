// Package testsupport holds helpers shared by package tests: a config builder
// rooted in t.TempDir and a fake queue service served by httptest.
package testsupport
