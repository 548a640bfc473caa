// Package jsonpath validates the JSON paths that map an HTTP response to
// metric values and derives the list and relative paths used to walk it.
//
// Paths use a small dotted dialect: "$" is the root, "[*]" iterates an array
// and every other segment is an object key, for example
// "$.data.[*].metrics.[*].value". The list path of a path is its prefix up to
// and including the last "[*]"; the relative path is what follows it.
package jsonpath

import (
	"fmt"
	"strings"
)

const (
	root     = "$"
	wildcard = "[*]"
	emptyArr = "[]"
)

// PathType names the role of a path in error messages.
type PathType string

const (
	PathTypeMetricValue     PathType = "metric value"
	PathTypeTimestamp       PathType = "timestamp"
	PathTypeServiceInstance PathType = "service instance"
)

// Kind classifies a path error.
type Kind int

const (
	KindEmpty Kind = iota
	KindNoArray
	KindIncorrect
	KindMissingKey
	KindMismatch
)

// PathError describes an unusable JSON path.
type PathError struct {
	Kind     Kind
	PathType PathType
	Path     string
}

func (e *PathError) Error() string {
	switch e.Kind {
	case KindEmpty:
		return fmt.Sprintf("Json path for %s is empty or null.", e.PathType)
	case KindNoArray:
		return fmt.Sprintf("No array found in json path for %s.", e.PathType)
	case KindIncorrect:
		return fmt.Sprintf("Incorrect json path for %s", e.PathType)
	case KindMissingKey:
		return "Can not derive relative path. Missing key."
	default:
		return "Json paths do not match."
	}
}

// Validate checks a single path: it must be set, iterate at least one array
// and end in a key after its last array.
func Validate(path string, pathType PathType) error {
	if strings.TrimSpace(path) == "" {
		return &PathError{Kind: KindEmpty, PathType: pathType, Path: path}
	}
	last := strings.LastIndex(path, wildcard)
	if last < 0 {
		return &PathError{Kind: KindNoArray, PathType: pathType, Path: path}
	}
	if strings.Contains(path, emptyArr) || !validSuffix(path[last+len(wildcard):]) {
		return &PathError{Kind: KindIncorrect, PathType: pathType, Path: path}
	}
	return nil
}

// validSuffix accepts ".key" or ".key.nested" with no array access.
func validSuffix(suffix string) bool {
	if !strings.HasPrefix(suffix, ".") {
		return false
	}
	for _, segment := range strings.Split(suffix[1:], ".") {
		if segment == "" || strings.ContainsAny(segment, "[]") {
			return false
		}
	}
	return true
}

// ListPath returns the prefix of path up to and including its last "[*]".
func ListPath(path string) string {
	last := strings.LastIndex(path, wildcard)
	if last < 0 {
		return ""
	}
	return path[:last+len(wildcard)]
}

// RelativePath returns the key path that follows the list path of path.
func RelativePath(path string) string {
	return strings.TrimPrefix(path[len(ListPath(path)):], ".")
}

// checkListPath rejects list paths that do not start at the root or that
// skip a key between two segments.
func checkListPath(listPath string) error {
	segments := strings.Split(listPath, ".")
	if segments[0] != root {
		return &PathError{Kind: KindMissingKey, Path: listPath}
	}
	for _, segment := range segments {
		if segment == "" {
			return &PathError{Kind: KindMissingKey, Path: listPath}
		}
	}
	return nil
}

// Mapping is the set of absolute paths of one metric response.
type Mapping struct {
	MetricValue     string
	Timestamp       string
	ServiceInstance string
}

// Relative is the walkable form of a Mapping.
type Relative struct {
	MetricList          string
	MetricValue         string
	Timestamp           string
	ServiceInstanceList string
	ServiceInstance     string
}

// Derive validates m and returns its list and relative paths. The service
// instance path is only checked and derived when hostBased is set.
//
// Each path is validated on its own first, in the order metric value,
// timestamp, service instance. The list paths are then checked: the metric
// list path must be rooted without missing keys, the timestamp must iterate
// the same list as the metric value, and the service instance list must be
// an enclosing list of the metric list.
func Derive(m Mapping, hostBased bool) (Relative, error) {
	if err := Validate(m.MetricValue, PathTypeMetricValue); err != nil {
		return Relative{}, err
	}
	if err := Validate(m.Timestamp, PathTypeTimestamp); err != nil {
		return Relative{}, err
	}
	if hostBased {
		if err := Validate(m.ServiceInstance, PathTypeServiceInstance); err != nil {
			return Relative{}, err
		}
	}

	metricList := ListPath(m.MetricValue)
	if err := checkListPath(metricList); err != nil {
		return Relative{}, err
	}
	if ListPath(m.Timestamp) != metricList {
		return Relative{}, &PathError{Kind: KindMismatch, PathType: PathTypeTimestamp, Path: m.Timestamp}
	}

	rel := Relative{
		MetricList:  metricList,
		MetricValue: RelativePath(m.MetricValue),
		Timestamp:   RelativePath(m.Timestamp),
	}
	if !hostBased {
		return rel, nil
	}

	instanceList := ListPath(m.ServiceInstance)
	if !strings.HasPrefix(metricList, instanceList) {
		return Relative{}, &PathError{Kind: KindMismatch, PathType: PathTypeServiceInstance, Path: m.ServiceInstance}
	}
	if err := checkListPath(instanceList); err != nil {
		return Relative{}, err
	}
	rel.ServiceInstanceList = instanceList
	rel.ServiceInstance = RelativePath(m.ServiceInstance)
	return rel, nil
}
