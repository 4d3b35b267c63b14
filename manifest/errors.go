package manifest

import "github.com/pkg/errors"

var (
	// ErrMissingAttribute is returned when a required XML attribute is
	// absent from a <program>/<patch>/<ufs> element.
	ErrMissingAttribute = errors.New("manifest: missing required attribute")
	// ErrUnrecognizedRoot is returned when a manifest file's root element
	// does not match any known manifest type.
	ErrUnrecognizedRoot = errors.New("manifest: unrecognized root element")
	// ErrDuplicateSection is returned when a UFS plan file contains more
	// than one Common or Epilogue tag.
	ErrDuplicateSection = errors.New("manifest: duplicate common or epilogue tag")
	// ErrIncomplete is returned when a UFS plan file is missing its
	// Common, Body, or Epilogue section.
	ErrIncomplete = errors.New("manifest: incomplete ufs plan")
	// ErrLockMismatch is returned when a UFS plan's bConfigDescrLock value
	// does not agree with the CLI's --finalize-provisioning flag.
	ErrLockMismatch = errors.New("manifest: bConfigDescrLock does not match --finalize-provisioning")
	// ErrMultipleUFSPlans is returned when more than one UFS plan file is
	// loaded in a single run.
	ErrMultipleUFSPlans = errors.New("manifest: only one UFS provisioning XML allowed")
	// ErrNoBootablePartition is returned by FindBootablePartition when no
	// program entry carries a recognized bootable label.
	ErrNoBootablePartition = errors.New("manifest: no bootable partition found")
	// ErrMultipleBootablePartitions is returned by FindBootablePartition
	// when more than one program entry carries a bootable label.
	ErrMultipleBootablePartitions = errors.New("manifest: more than one bootable partition found")
)
