package models

// Persisted column names, matching the tracking sheet header row. The header
// is always row 1 in every backend.
const (
	ColEmployeeID   = "Employee ID"
	ColEmployeeName = "Employee Name"
	ColReportDate   = "Date of Report Generation"
	ColPrediction   = "Attrition Prediction"
	ColActualStatus = "Actual Status"
	ColProbability  = "Attrition Probability"
	ColRiskLevel    = "Risk Level"
	ColCostCenter   = "Cost Center"
	ColTenureBucket = "Tenure Bucket (Today Based)"
	ColTriggers     = "Triggers"
	ColRegrettable  = "Regrettable Y/N"
	ColHRComment    = "HR_Comments"
	ColOpsComment   = "OPS_comments"
)

// CanonicalHeader is the full column set in persisted order. Variants that
// lack a column still serialize it (as empty cells) so that every save is a
// complete, header-first table rewrite.
var CanonicalHeader = []string{
	ColReportDate,
	ColEmployeeID,
	ColEmployeeName,
	ColCostCenter,
	ColPrediction,
	ColActualStatus,
	ColProbability,
	ColRiskLevel,
	ColTenureBucket,
	ColTriggers,
	ColHRComment,
	ColOpsComment,
	ColRegrettable,
}

// RequiredColumns must be present in a loaded header for normalization to
// proceed; a table missing one of these has no usable identity.
var RequiredColumns = []string{
	ColEmployeeID,
	ColReportDate,
}
