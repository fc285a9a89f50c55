// Package types defines the sensemap data model: placed objects, the card
// and box entities they reference, view scope, render payloads, and the
// interfaces through which the core talks to its data layer.
// It also holds the standard sentinel errors shared by every package.
package types
