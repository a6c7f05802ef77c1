package domain

// Base carries the identifier and timestamps shared by every entity
type Base struct {
	ID        string    `json:"id"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// RecordID returns the entity identifier
func (b Base) RecordID() string {
	return b.ID
}

// Meta returns the identifier and timestamps
func (b Base) Meta() Base {
	return b
}

// Stamp assigns the identity of a newly created record
func (b *Base) Stamp(id string, ts Timestamp) {
	b.ID = id
	b.CreatedAt = ts
	b.UpdatedAt = ts
}

// SetID replaces the identifier, used when a stored record is loaded without a usable one
func (b *Base) SetID(id string) {
	b.ID = id
}

// Touch restores the identity fields of prev and refreshes updatedAt
func (b *Base) Touch(prev Base, ts Timestamp) {
	b.ID = prev.ID
	b.CreatedAt = prev.CreatedAt
	b.UpdatedAt = ts
}

// ============================================================================
// Sales
// ============================================================================

// LeadStatus represents the pipeline position of a lead
type LeadStatus string

const (
	LeadStatusNew             LeadStatus = "New"
	LeadStatusContacted       LeadStatus = "Contacted"
	LeadStatusSurveyScheduled LeadStatus = "Survey Scheduled"
	LeadStatusQualified       LeadStatus = "Qualified"
	LeadStatusLost            LeadStatus = "Lost"
)

// Lead represents a prospective customer inquiry
type Lead struct {
	Base
	Name            string     `json:"name" validate:"required,max=200"`
	Mobile          string     `json:"mobile" validate:"required,max=50"`
	Email           string     `json:"email,omitempty" validate:"omitempty,email"`
	Source          string     `json:"source"`
	Location        string     `json:"location" validate:"required"`
	Capacity        string     `json:"capacity" validate:"required"`
	Status          LeadStatus `json:"status" validate:"omitempty,oneof='New' 'Contacted' 'Survey Scheduled' 'Qualified' 'Lost'"`
	AIScore         int        `json:"aiScore" validate:"gte=0,lte=100"`
	ElectricityBill string     `json:"electricityBill"`
	AssignedTo      string     `json:"assignedTo"`
}

// Clone returns a copy of the lead
func (l Lead) Clone() Lead { return l }

// SurveyStatus represents the progress of a site survey
type SurveyStatus string

const (
	SurveyStatusPlanned    SurveyStatus = "Planned"
	SurveyStatusInProgress SurveyStatus = "In Progress"
	SurveyStatusCompleted  SurveyStatus = "Completed"
)

// Survey represents a rooftop site survey for a lead
type Survey struct {
	Base
	LeadID           string       `json:"leadId" validate:"required"`
	ProjectID        string       `json:"projectId,omitempty"`
	RoofArea         string       `json:"roofArea"`
	ShadowPercentage int          `json:"shadowPercentage" validate:"gte=0,lte=100"`
	Direction        string       `json:"direction"`
	RoofType         string       `json:"roofType"`
	Photos           []string     `json:"photos"`
	GPSLocation      string       `json:"gpsLocation"`
	Status           SurveyStatus `json:"status"`
}

// Clone returns a deep copy of the survey
func (s Survey) Clone() Survey {
	s.Photos = cloneSlice(s.Photos)
	return s
}

// QuotationStatus represents the state of a priced proposal
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "Draft"
	QuotationStatusSent     QuotationStatus = "Sent"
	QuotationStatusApproved QuotationStatus = "Approved"
	QuotationStatusRejected QuotationStatus = "Rejected"
)

// Quotation represents a priced proposal tied to a lead
type Quotation struct {
	Base
	LeadID       string          `json:"leadId" validate:"required"`
	Customer     string          `json:"customer" validate:"required"`
	Capacity     string          `json:"capacity" validate:"required"`
	PerWattPrice float64         `json:"perWattPrice" validate:"gte=0"`
	TotalAmount  float64         `json:"totalAmount" validate:"gte=0"`
	Status       QuotationStatus `json:"status"`
}

// Clone returns a copy of the quotation
func (q Quotation) Clone() Quotation { return q }

// ============================================================================
// Projects
// ============================================================================

// ProjectStatus represents the execution stage of a project
type ProjectStatus string

const (
	ProjectStatusSurvey        ProjectStatus = "Survey"
	ProjectStatusDesign        ProjectStatus = "Design"
	ProjectStatusProduction    ProjectStatus = "Production"
	ProjectStatusLogistics     ProjectStatus = "Logistics"
	ProjectStatusInstallation  ProjectStatus = "Installation"
	ProjectStatusCommissioning ProjectStatus = "Commissioning"
	ProjectStatusCompleted     ProjectStatus = "Completed"
)

// TimelineStatus represents the state of a project milestone
type TimelineStatus string

const (
	TimelineStatusPlanned TimelineStatus = "Planned"
	TimelineStatusDone    TimelineStatus = "Done"
	TimelineStatusBlocked TimelineStatus = "Blocked"
)

// ProjectDocument is a file attached to a project
type ProjectDocument struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Content    string    `json:"content,omitempty"`
	UploadedAt Timestamp `json:"uploadedAt"`
}

// TimelineEvent is a project milestone
type TimelineEvent struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Date   string         `json:"date"`
	Status TimelineStatus `json:"status"`
}

// TeamMember is a person assigned to a project
type TeamMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Project represents the executable unit of work created from an approved quotation
type Project struct {
	Base
	QuotationID        string            `json:"quotationId"`
	Customer           string            `json:"customer" validate:"required"`
	Capacity           string            `json:"capacity"`
	Location           string            `json:"location"`
	Status             ProjectStatus     `json:"status"`
	Progress           int               `json:"progress" validate:"gte=0,lte=100"`
	StartDate          string            `json:"startDate"`
	ExpectedCompletion string            `json:"expectedCompletion"`
	ProjectManager     string            `json:"projectManager"`
	TotalValue         float64           `json:"totalValue" validate:"gte=0"`
	Documents          []ProjectDocument `json:"documents"`
	Timeline           []TimelineEvent   `json:"timeline"`
	Team               []TeamMember      `json:"team"`
}

// Clone returns a deep copy of the project
func (p Project) Clone() Project {
	p.Documents = cloneSlice(p.Documents)
	p.Timeline = cloneSlice(p.Timeline)
	p.Team = cloneSlice(p.Team)
	return p
}

// ============================================================================
// Supply chain
// ============================================================================

// InventoryStatus is derived from available stock against the minimum threshold
type InventoryStatus string

const (
	InventoryStatusGood     InventoryStatus = "good"
	InventoryStatusWarning  InventoryStatus = "warning"
	InventoryStatusCritical InventoryStatus = "critical"
)

// InventoryItem represents a stocked material
type InventoryItem struct {
	Base
	Name       string          `json:"name" validate:"required"`
	Unit       string          `json:"unit" validate:"required"`
	TotalStock int             `json:"totalStock" validate:"gte=0"`
	Reserved   int             `json:"reserved" validate:"gte=0"`
	Available  int             `json:"available"`
	MinStock   int             `json:"minStock" validate:"gte=0"`
	Status     InventoryStatus `json:"status"`
}

// Clone returns a copy of the item
func (i InventoryItem) Clone() InventoryItem { return i }

// PurchaseOrderStatus represents the state of a replenishment order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusOpen      PurchaseOrderStatus = "Open"
	PurchaseOrderStatusOrdered   PurchaseOrderStatus = "Ordered"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "Received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "Cancelled"
)

// PurchaseOrder represents a request to replenish an inventory item
type PurchaseOrder struct {
	Base
	ItemID       string              `json:"itemId" validate:"required"`
	ItemName     string              `json:"itemName"`
	Quantity     int                 `json:"quantity" validate:"gt=0"`
	Unit         string              `json:"unit"`
	Supplier     string              `json:"supplier" validate:"required"`
	ExpectedDate string              `json:"expectedDate"`
	Status       PurchaseOrderStatus `json:"status"`
}

// Clone returns a copy of the purchase order
func (p PurchaseOrder) Clone() PurchaseOrder { return p }

// ============================================================================
// Manufacturing
// ============================================================================

// ProductionOrderStatus represents the state of a production batch
type ProductionOrderStatus string

const (
	ProductionOrderStatusPending    ProductionOrderStatus = "Pending"
	ProductionOrderStatusInProgress ProductionOrderStatus = "In Progress"
	ProductionOrderStatusCompleted  ProductionOrderStatus = "Completed"
)

// ProductionOrder represents a manufacturing batch for a project
type ProductionOrder struct {
	Base
	ProjectID string                `json:"projectId"`
	BatchID   string                `json:"batchId"`
	Capacity  string                `json:"capacity"`
	Stage     string                `json:"stage"`
	Status    ProductionOrderStatus `json:"status"`
	Progress  int                   `json:"progress" validate:"gte=0,lte=100"`
}

// Clone returns a copy of the order
func (p ProductionOrder) Clone() ProductionOrder { return p }

// StageStatus is derived from a production stage's delay
type StageStatus string

const (
	StageStatusOnTrack    StageStatus = "on-track"
	StageStatusDelayed    StageStatus = "delayed"
	StageStatusBottleneck StageStatus = "bottleneck"
	StageStatusCompleted  StageStatus = "completed"
)

// ProductionLineStage represents one fixed step of the module assembly line
type ProductionLineStage struct {
	Base
	Name     string      `json:"name"`
	Batches  int         `json:"batches"`
	Capacity string      `json:"capacity"`
	Delay    int         `json:"delay"`
	Machine  string      `json:"machine"`
	Shift    string      `json:"shift"`
	Status   StageStatus `json:"status"`
	Workers  int         `json:"workers"`
}

// Clone returns a copy of the stage
func (s ProductionLineStage) Clone() ProductionLineStage { return s }

// QualityStatus represents an inspection verdict
type QualityStatus string

const (
	QualityStatusPass QualityStatus = "Pass"
	QualityStatusFail QualityStatus = "Fail"
	QualityStatusHold QualityStatus = "Hold"
)

// QualityRecord represents an inspection result
type QualityRecord struct {
	Base
	ProjectID         string        `json:"projectId,omitempty"`
	ProductionOrderID string        `json:"productionOrderId,omitempty"`
	BatchID           string        `json:"batchId,omitempty"`
	Inspector         string        `json:"inspector,omitempty"`
	Checkpoint        string        `json:"checkpoint,omitempty"`
	Status            QualityStatus `json:"status" validate:"required,oneof=Pass Fail Hold"`
	Remarks           string        `json:"remarks"`
}

// Clone returns a copy of the record
func (q QualityRecord) Clone() QualityRecord { return q }

// ============================================================================
// Field operations
// ============================================================================

// LogisticsStatus represents the shipment progression
type LogisticsStatus string

const (
	LogisticsStatusPlanned    LogisticsStatus = "Planned"
	LogisticsStatusDispatched LogisticsStatus = "Dispatched"
	LogisticsStatusInTransit  LogisticsStatus = "In Transit"
	LogisticsStatusDelivered  LogisticsStatus = "Delivered"
)

// LogisticsOrder represents a shipment of material to a project site
type LogisticsOrder struct {
	Base
	ProjectID        string          `json:"projectId" validate:"required"`
	FromLocation     string          `json:"fromLocation"`
	ToLocation       string          `json:"toLocation"`
	Transporter      string          `json:"transporter"`
	VehicleNumber    string          `json:"vehicleNumber"`
	DispatchDate     string          `json:"dispatchDate"`
	ExpectedDelivery string          `json:"expectedDelivery"`
	Status           LogisticsStatus `json:"status"`
}

// Clone returns a copy of the order
func (l LogisticsOrder) Clone() LogisticsOrder { return l }

// InstallationStatus is derived from checklist progress
type InstallationStatus string

const (
	InstallationStatusScheduled  InstallationStatus = "Scheduled"
	InstallationStatusInProgress InstallationStatus = "In Progress"
	InstallationStatusCompleted  InstallationStatus = "Completed"
)

// InstallationTask is one checklist entry of an installation
type InstallationTask struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Installation represents on-site installation work for a project
type Installation struct {
	Base
	ProjectID  string             `json:"projectId" validate:"required"`
	Technician string             `json:"technician" validate:"required"`
	StartDate  string             `json:"startDate"`
	EndDate    string             `json:"endDate,omitempty"`
	Status     InstallationStatus `json:"status"`
	Progress   int                `json:"progress"`
	Tasks      []InstallationTask `json:"tasks"`
}

// Clone returns a deep copy of the installation
func (i Installation) Clone() Installation {
	i.Tasks = cloneSlice(i.Tasks)
	return i
}

// ============================================================================
// Finance
// ============================================================================

// InvoiceStatus represents the billing state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "Draft"
	InvoiceStatusSent    InvoiceStatus = "Sent"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusPartial InvoiceStatus = "Partial"
	InvoiceStatusOverdue InvoiceStatus = "Overdue"
)

// Invoice represents an amount billed against a project
type Invoice struct {
	Base
	ProjectID  string        `json:"projectId" validate:"required"`
	Amount     float64       `json:"amount" validate:"gte=0"`
	Status     InvoiceStatus `json:"status"`
	DueDate    string        `json:"dueDate"`
	PaidAmount *float64      `json:"paidAmount,omitempty"`
}

// Clone returns a deep copy of the invoice
func (i Invoice) Clone() Invoice {
	if i.PaidAmount != nil {
		paid := *i.PaidAmount
		i.PaidAmount = &paid
	}
	return i
}

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

// Payment represents money received against an invoice
type Payment struct {
	Base
	InvoiceID string        `json:"invoiceId" validate:"required"`
	Amount    float64       `json:"amount" validate:"gt=0"`
	Method    string        `json:"method"`
	Status    PaymentStatus `json:"status"`
}

// Clone returns a copy of the payment
func (p Payment) Clone() Payment { return p }

// ============================================================================
// Service
// ============================================================================

// TicketPriority determines a service ticket's SLA window
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketStatus represents the progression of a service ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusScheduled  TicketStatus = "Scheduled"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// ServiceTicket represents a post-installation support case
type ServiceTicket struct {
	Base
	ProjectID  string         `json:"projectId"`
	Customer   string         `json:"customer" validate:"required"`
	Issue      string         `json:"issue" validate:"required"`
	Priority   TicketPriority `json:"priority" validate:"required,oneof=Low Medium High"`
	Status     TicketStatus   `json:"status"`
	AssignedTo string         `json:"assignedTo"`
	Location   string         `json:"location,omitempty"`
}

// Clone returns a copy of the ticket
func (t ServiceTicket) Clone() ServiceTicket { return t }

// ============================================================================
// People and compliance
// ============================================================================

// EmployeeStatus represents whether an employee is active
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "Active"
	EmployeeStatusInactive EmployeeStatus = "Inactive"
)

// Employee represents a staff member
type Employee struct {
	Base
	Name   string         `json:"name" validate:"required"`
	Role   string         `json:"role" validate:"required"`
	Email  string         `json:"email" validate:"omitempty,email"`
	Phone  string         `json:"phone"`
	Status EmployeeStatus `json:"status"`
}

// Clone returns a copy of the employee
func (e Employee) Clone() Employee { return e }

// ComplianceStatus is derived from a certificate's expiry date
type ComplianceStatus string

const (
	ComplianceStatusValid        ComplianceStatus = "Valid"
	ComplianceStatusExpiringSoon ComplianceStatus = "Expiring Soon"
	ComplianceStatusExpired      ComplianceStatus = "Expired"
)

// ComplianceRecord represents a certificate or registration with an expiry
type ComplianceRecord struct {
	Base
	Title             string           `json:"title" validate:"required"`
	Category          string           `json:"category" validate:"required"`
	CertificateNumber string           `json:"certificateNumber" validate:"required"`
	IssueDate         string           `json:"issueDate"`
	ExpiryDate        string           `json:"expiryDate" validate:"required"`
	Status            ComplianceStatus `json:"status"`
}

// Clone returns a copy of the record
func (c ComplianceRecord) Clone() ComplianceRecord { return c }

// CommunityPost represents an internal knowledge-sharing post
type CommunityPost struct {
	Base
	Author   string `json:"author" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
}

// Clone returns a copy of the post
func (c CommunityPost) Clone() CommunityPost { return c }

// ============================================================================
// Reporting and settings
// ============================================================================

// ReportCategory selects which metrics a report carries
type ReportCategory string

const (
	ReportCategorySales      ReportCategory = "Sales"
	ReportCategoryOperations ReportCategory = "Operations"
	ReportCategoryFinance    ReportCategory = "Finance"
	ReportCategoryService    ReportCategory = "Service"
)

// ReportStatus represents whether a report's metrics have been computed
type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "Draft"
	ReportStatusGenerated ReportStatus = "Generated"
)

// Report is a stored snapshot of business metrics
type Report struct {
	Base
	Title       string             `json:"title"`
	Category    ReportCategory     `json:"category" validate:"required,oneof=Sales Operations Finance Service"`
	Period      string             `json:"period"`
	GeneratedBy string             `json:"generatedBy"`
	Status      ReportStatus       `json:"status"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Clone returns a deep copy of the report
func (r Report) Clone() Report {
	if r.Metrics != nil {
		metrics := make(map[string]float64, len(r.Metrics))
		for k, v := range r.Metrics {
			metrics[k] = v
		}
		r.Metrics = metrics
	}
	return r
}

// AppSettings holds the process-wide configuration edited from the settings screen
type AppSettings struct {
	CompanyName    string  `json:"companyName"`
	Currency       string  `json:"currency"`
	Timezone       string  `json:"timezone"`
	DefaultMargin  float64 `json:"defaultMargin"`
	GSTRate        float64 `json:"gstRate"`
	LiveMonitoring bool    `json:"liveMonitoring"`
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
