//go:build qdl_allow_otp_lock

package firehose

// wireLockValue passes the manifest's parsed bConfigDescrLock value
// through unmodified. Only built with -tags qdl_allow_otp_lock; combined
// with the manifest-level --finalize-provisioning/XML match check, both
// the build tag and the CLI flag are required to ever send a nonzero lock
// bit.
func wireLockValue(parsed bool) bool {
	return parsed
}
