package domain

// KeyPrefix namespaces every key esdata writes to the cache backend.
const KeyPrefix = "esdata:"
