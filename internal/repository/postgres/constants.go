package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	roleStudent           = "STUDENT"
	rankingCollegeOverall = "COLLEGE_OVERALL"
	topStudentsLimit      = 5
	highScoreThreshold    = 70
	lowScoreThreshold     = 40
	enrollmentCompleted   = "COMPLETED"
	enrollmentAssigned    = "ASSIGNED"
	enrollmentInProgress  = "IN_PROGRESS"
	auditStatusSuccess    = "SUCCESS"
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	errUserNotFound          = "user not found"
	errCollegeNotFound       = "College not found"
	errCourseNotFound        = "Course not found"
	errPDFNotFound           = "PDF not found"
	errStudentNotFound       = "Student profile not found"
	errCollegeAdminNotMapped = "College admin not mapped to any college"
	errCourseNotAvailable    = "Course not available for this college"
	errNoStudentsForCohort   = "No students found for given branch and academic year"
	errCourseNotAssigned     = "Course not assigned to this student"
	errDuplicateCollegeCode  = "College with this code already exists"
	errDuplicateCourseCode   = "Course with this code already exists"
	errDuplicateStudent      = "Duplicate email / roll number"
	errInvalidStudentRefs    = "Invalid branch or academic year"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"
	errFailedStartTransactionFmt     = "failed to start transaction: %w"
	errFailedCommitTransactionFmt    = "failed to commit transaction: %w"

	errFailedGetUserFmt         = "failed to get user: %w"
	errFailedUpdateLastLoginFmt = "failed to update last login: %w"
	errFailedRecordLoginFmt     = "failed to record login: %w"

	errFailedCreateCollegeFmt = "failed to create college: %w"
	errFailedGetCollegeFmt    = "failed to get college: %w"
	errFailedListCollegesFmt  = "failed to list colleges: %w"
	errFailedUpdateCollegeFmt = "failed to update college: %w"
	errFailedDeleteCollegeFmt = "failed to delete college: %w"

	errFailedCreateCourseFmt = "failed to create course: %w"
	errFailedGetCourseFmt    = "failed to get course: %w"
	errFailedListCoursesFmt  = "failed to list courses: %w"
	errFailedUpdateCourseFmt = "failed to update course: %w"
	errFailedDeleteCourseFmt = "failed to delete course: %w"

	errFailedCreateCourseFileFmt = "failed to create course file: %w"
	errFailedListCourseFilesFmt  = "failed to list course files: %w"
	errFailedGetCourseFileFmt    = "failed to get course file: %w"
	errFailedSetThumbnailFmt     = "failed to set course thumbnail: %w"

	errFailedResolveCollegeFmt = "failed to resolve college: %w"
	errFailedResolveStudentFmt = "failed to resolve student: %w"
	errFailedCreateStudentFmt  = "failed to create student: %w"
	errFailedListStudentsFmt   = "failed to list students: %w"
	errFailedScanStudentFmt    = "failed to scan student: %w"

	errFailedAssignCourseFmt     = "failed to assign course: %w"
	errFailedListEnrollmentsFmt  = "failed to list enrollments: %w"
	errFailedUpdateProgressFmt   = "failed to update progress: %w"
	errFailedLoadDashboardFmt    = "failed to load %s dashboard: %w"
	errFailedInsertAuditEventFmt = "failed to insert audit event: %w"
	errIterateRowsFmt            = "error iterating rows: %w"
)

var (
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedStartTransaction     = func(err error) error { return fmt.Errorf(errFailedStartTransactionFmt, err) }
	errFailedCommitTransaction    = func(err error) error { return fmt.Errorf(errFailedCommitTransactionFmt, err) }
	errFailedGetUser              = func(err error) error { return fmt.Errorf(errFailedGetUserFmt, err) }
	errFailedUpdateLastLogin      = func(err error) error { return fmt.Errorf(errFailedUpdateLastLoginFmt, err) }
	errFailedRecordLogin          = func(err error) error { return fmt.Errorf(errFailedRecordLoginFmt, err) }
	errFailedCreateCollege        = func(err error) error { return fmt.Errorf(errFailedCreateCollegeFmt, err) }
	errFailedGetCollege           = func(err error) error { return fmt.Errorf(errFailedGetCollegeFmt, err) }
	errFailedListColleges         = func(err error) error { return fmt.Errorf(errFailedListCollegesFmt, err) }
	errFailedUpdateCollege        = func(err error) error { return fmt.Errorf(errFailedUpdateCollegeFmt, err) }
	errFailedDeleteCollege        = func(err error) error { return fmt.Errorf(errFailedDeleteCollegeFmt, err) }
	errFailedCreateCourse         = func(err error) error { return fmt.Errorf(errFailedCreateCourseFmt, err) }
	errFailedGetCourse            = func(err error) error { return fmt.Errorf(errFailedGetCourseFmt, err) }
	errFailedListCourses          = func(err error) error { return fmt.Errorf(errFailedListCoursesFmt, err) }
	errFailedUpdateCourse         = func(err error) error { return fmt.Errorf(errFailedUpdateCourseFmt, err) }
	errFailedDeleteCourse         = func(err error) error { return fmt.Errorf(errFailedDeleteCourseFmt, err) }
	errFailedCreateCourseFile     = func(err error) error { return fmt.Errorf(errFailedCreateCourseFileFmt, err) }
	errFailedListCourseFiles      = func(err error) error { return fmt.Errorf(errFailedListCourseFilesFmt, err) }
	errFailedGetCourseFile        = func(err error) error { return fmt.Errorf(errFailedGetCourseFileFmt, err) }
	errFailedSetThumbnail         = func(err error) error { return fmt.Errorf(errFailedSetThumbnailFmt, err) }
	errFailedResolveCollege       = func(err error) error { return fmt.Errorf(errFailedResolveCollegeFmt, err) }
	errFailedResolveStudent       = func(err error) error { return fmt.Errorf(errFailedResolveStudentFmt, err) }
	errFailedCreateStudent        = func(err error) error { return fmt.Errorf(errFailedCreateStudentFmt, err) }
	errFailedListStudents         = func(err error) error { return fmt.Errorf(errFailedListStudentsFmt, err) }
	errFailedScanStudent          = func(err error) error { return fmt.Errorf(errFailedScanStudentFmt, err) }
	errFailedAssignCourse         = func(err error) error { return fmt.Errorf(errFailedAssignCourseFmt, err) }
	errFailedListEnrollments      = func(err error) error { return fmt.Errorf(errFailedListEnrollmentsFmt, err) }
	errFailedUpdateProgress       = func(err error) error { return fmt.Errorf(errFailedUpdateProgressFmt, err) }
	errFailedLoadDashboard        = func(name string, err error) error { return fmt.Errorf(errFailedLoadDashboardFmt, name, err) }
	errFailedInsertAuditEvent     = func(err error) error { return fmt.Errorf(errFailedInsertAuditEventFmt, err) }
	errIterateRows                = func(err error) error { return fmt.Errorf(errIterateRowsFmt, err) }
)
