package consts

const (
	// ChatUploadTempKey 附件上传临时登记 (Hash: objectKey -> meta)
	ChatUploadTempKey = "chat:upload:temp"
)
