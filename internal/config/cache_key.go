package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentKey returns the cache key for a single student record
func (r *CacheKeyStruct) StudentKey(studentID int64) string {
	return fmt.Sprintf("student:%d", studentID)
}

// StudentListKey returns the cache key for the full student list
func (r *CacheKeyStruct) StudentListKey() string {
	return "students:all"
}

// StudentGenerationKey returns the counter bumped by every student write
func (r *CacheKeyStruct) StudentGenerationKey() string {
	return "students:gen"
}

var CacheKey = NewCacheKeyStruct()
