package domain

// State is the complete application state tree. Its JSON encoding is the persisted snapshot layout.
type State struct {
	Leads                Collection[Lead]                `json:"leads"`
	Surveys              Collection[Survey]              `json:"surveys"`
	Quotations           Collection[Quotation]           `json:"quotations"`
	Projects             Collection[Project]             `json:"projects"`
	Inventory            Collection[InventoryItem]       `json:"inventory"`
	PurchaseOrders       Collection[PurchaseOrder]       `json:"purchaseOrders"`
	ProductionOrders     Collection[ProductionOrder]     `json:"productionOrders"`
	ProductionLineStages Collection[ProductionLineStage] `json:"productionLineStages"`
	QualityRecords       Collection[QualityRecord]       `json:"qualityRecords"`
	Logistics            Collection[LogisticsOrder]      `json:"logistics"`
	Installations        Collection[Installation]        `json:"installations"`
	Invoices             Collection[Invoice]             `json:"invoices"`
	Payments             Collection[Payment]             `json:"payments"`
	ServiceTickets       Collection[ServiceTicket]       `json:"serviceTickets"`
	Employees            Collection[Employee]            `json:"employees"`
	ComplianceRecords    Collection[ComplianceRecord]    `json:"complianceRecords"`
	CommunityPosts       Collection[CommunityPost]       `json:"communityPosts"`
	Reports              Collection[Report]              `json:"reports"`
	Settings             AppSettings                     `json:"settings"`
	CurrentModule        string                          `json:"currentModule"`
}

// StateKeys lists the top-level keys of the persisted snapshot in layout order
var StateKeys = []string{
	"leads",
	"surveys",
	"quotations",
	"projects",
	"inventory",
	"purchaseOrders",
	"productionOrders",
	"productionLineStages",
	"qualityRecords",
	"logistics",
	"installations",
	"invoices",
	"payments",
	"serviceTickets",
	"employees",
	"complianceRecords",
	"communityPosts",
	"reports",
	"settings",
	"currentModule",
}

// Clone returns a deep copy of the state
func (s *State) Clone() *State {
	return &State{
		Leads:                s.Leads.Clone(),
		Surveys:              s.Surveys.Clone(),
		Quotations:           s.Quotations.Clone(),
		Projects:             s.Projects.Clone(),
		Inventory:            s.Inventory.Clone(),
		PurchaseOrders:       s.PurchaseOrders.Clone(),
		ProductionOrders:     s.ProductionOrders.Clone(),
		ProductionLineStages: s.ProductionLineStages.Clone(),
		QualityRecords:       s.QualityRecords.Clone(),
		Logistics:            s.Logistics.Clone(),
		Installations:        s.Installations.Clone(),
		Invoices:             s.Invoices.Clone(),
		Payments:             s.Payments.Clone(),
		ServiceTickets:       s.ServiceTickets.Clone(),
		Employees:            s.Employees.Clone(),
		ComplianceRecords:    s.ComplianceRecords.Clone(),
		CommunityPosts:       s.CommunityPosts.Clone(),
		Reports:              s.Reports.Clone(),
		Settings:             s.Settings,
		CurrentModule:        s.CurrentModule,
	}
}
