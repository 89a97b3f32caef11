package common

// UploadFailedCid is the sentinel stored in the mappings table when canonical
// bytes could not be uploaded to the content store. The hash itself remains
// the durable evidence of content identity.
const UploadFailedCid = "UPLOAD_FAILED"

// HashPrefix is prepended to the lowercase hex digest of canonical content.
const HashPrefix = "0x"
