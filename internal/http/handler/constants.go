package handler

const (
	jsonKeyMessage = "message"

	paramID       = "id"
	paramCourseID = "course_id"
	paramFileID   = "file_id"

	formFieldFile            = "file"
	formFieldFileTitle       = "file_title"
	formFieldFileDescription = "file_description"
	formFieldDurationSeconds = "duration_seconds"

	queryDepartmentID   = "department_id"
	queryAcademicYearID = "academic_year_id"
	queryMinCompletion  = "min_completion"
	queryMaxCompletion  = "max_completion"
	querySearch         = "q"

	defaultContentType = "application/octet-stream"
)

const (
	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "Invalid request body"
	msgInvalidPathParamFmt     = "%s: must be a positive integer"
	msgInvalidQueryParamFmt    = "%s: must be a number"
	msgCompletionRange         = "completion bounds must be between 0 and 100"
	msgSearchQueryRequired     = "q: required"
	msgNoFieldsToUpdate        = "No fields to update"
	msgFileRequired            = "file: required"
	msgStorageNotConfigured    = "File storage is not configured"
	msgUploadFailed            = "Failed to upload file"
	msgPresignFailed           = "Failed to generate file URL"
	msgUnsupportedBulkFile     = "Only Excel or CSV files supported"
	msgMissingColumnsFmt       = "Missing columns: %s"
	msgUnreadableBulkFile      = "Unable to read uploaded file"
	msgPasswordProcessFail     = "Failed to process password"
	msgStudentCreateFailed     = "Failed to create student"

	msgCollegeDeleted    = "College deleted successfully"
	msgCourseDeleted     = "Course deleted successfully"
	msgBulkCompleted     = "Bulk upload completed"
	msgAdminTestsReady   = "Admin tests module initialized"
	msgInvalidRowIntFmt  = "%s must be an integer"
	msgRowFieldRequired  = "%s is required"
	msgRowInvalidEmail   = "invalid email"
	msgRowPasswordLength = "password must be at least 6 characters"
)
