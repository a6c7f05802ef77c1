package domain

import "time"

// DefaultModule is the screen selected on first start
const DefaultModule = "dashboard"

// DefaultSettings returns the settings singleton used on first start and as the merge base on load
func DefaultSettings() AppSettings {
	return AppSettings{
		CompanyName:   "Solar OS",
		Currency:      "INR",
		Timezone:      "Asia/Kolkata",
		DefaultMargin: 12,
		GSTRate:       18,
	}
}

// InitialState returns the canonical state a fresh installation starts from.
// Load also uses it as the fallback for every key missing from a persisted snapshot.
func InitialState(now time.Time) *State {
	ts := NewTimestamp(now)
	base := func(id string) Base {
		return Base{ID: id, CreatedAt: ts, UpdatedAt: ts}
	}
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).UTC().Format("2006-01-02")
	}

	inventory := []InventoryItem{
		{Base: base("INV-001"), Name: "Solar Cells", Unit: "Units", TotalStock: 1200, Reserved: 950, MinStock: 500},
		{Base: base("INV-002"), Name: "Tempered Glass", Unit: "Sheets", TotalStock: 850, Reserved: 400, MinStock: 300},
	}
	for i := range inventory {
		DeriveInventory(&inventory[i])
	}

	stages := []ProductionLineStage{
		{Base: base("STAGE-1"), Name: "Glass Cleaning", Batches: 8, Capacity: "40 KW", Delay: 0, Machine: "GC-01", Shift: "Day", Status: StageStatusOnTrack, Workers: 2},
		{Base: base("STAGE-2"), Name: "Cell Stringing", Batches: 7, Capacity: "35 KW", Delay: 0, Machine: "CS-02", Shift: "Day", Status: StageStatusOnTrack, Workers: 3},
		{Base: base("STAGE-3"), Name: "Layup", Batches: 6, Capacity: "30 KW", Delay: 15, Machine: "LY-01", Shift: "Day", Status: StageStatusDelayed, Workers: 2},
		{Base: base("STAGE-4"), Name: "Lamination", Batches: 4, Capacity: "20 KW", Delay: 45, Machine: "LM-03", Shift: "Night", Status: StageStatusBottleneck, Workers: 4},
		{Base: base("STAGE-5"), Name: "Framing", Batches: 5, Capacity: "25 KW", Delay: 0, Machine: "FR-02", Shift: "Day", Status: StageStatusOnTrack, Workers: 3},
		{Base: base("STAGE-6"), Name: "EL Testing", Batches: 5, Capacity: "25 KW", Delay: 0, Machine: "EL-01", Shift: "Day", Status: StageStatusOnTrack, Workers: 2},
		{Base: base("STAGE-7"), Name: "Sun Simulator", Batches: 5, Capacity: "25 KW", Delay: 0, Machine: "SS-01", Shift: "Day", Status: StageStatusCompleted, Workers: 2},
	}

	paid := 150000.0

	return &State{
		Leads: NewCollection(
			Lead{Base: base("LD-001"), Name: "Sharma Residence", Mobile: "+91 98765 43210", Email: "sharma@example.com", Source: "Website", Location: "Pune", Capacity: "5 KW", Status: LeadStatusQualified, AIScore: 82, ElectricityBill: "4500", AssignedTo: "Rahul"},
			Lead{Base: base("LD-002"), Name: "Patel Textiles", Mobile: "+91 91234 56789", Source: "Referral", Location: "Surat", Capacity: "50 KW", Status: LeadStatusNew, AIScore: 67, ElectricityBill: "62000", AssignedTo: "Priya"},
		),
		Surveys: NewCollection(
			Survey{Base: base("SUR-001"), LeadID: "LD-001", RoofArea: "600 sq ft", ShadowPercentage: 10, Direction: "South", RoofType: "RCC", Photos: []string{}, GPSLocation: "18.5204, 73.8567", Status: SurveyStatusCompleted},
		),
		Quotations: NewCollection(
			Quotation{Base: base("QUO-001"), LeadID: "LD-001", Customer: "Sharma Residence", Capacity: "5 KW", PerWattPrice: 30, TotalAmount: 150000, Status: QuotationStatusApproved},
		),
		Projects: NewCollection(
			Project{
				Base:               base("PRJ-001"),
				QuotationID:        "QUO-001",
				Customer:           "Sharma Residence",
				Capacity:           "5 KW",
				Location:           "Pune",
				Status:             ProjectStatusInstallation,
				Progress:           70,
				StartDate:          day(-20),
				ExpectedCompletion: day(10),
				ProjectManager:     "Anil Kumar",
				TotalValue:         150000,
				Documents:          []ProjectDocument{},
				Timeline:           []TimelineEvent{},
				Team:               []TeamMember{},
			},
		),
		Inventory:            NewCollection(inventory...),
		ProductionLineStages: NewCollection(stages...),
		Invoices: NewCollection(
			Invoice{Base: base("INV-2024-001"), ProjectID: "PRJ-001", Amount: 150000, Status: InvoiceStatusPaid, DueDate: day(-5), PaidAmount: &paid},
		),
		ServiceTickets: NewCollection(
			ServiceTicket{Base: base("TKT-001"), ProjectID: "PRJ-001", Customer: "Sharma Residence", Issue: "Inverter showing grid fault", Priority: TicketPriorityHigh, Status: TicketStatusOpen, AssignedTo: "Vikram", Location: "Pune"},
		),
		Settings:      DefaultSettings(),
		CurrentModule: DefaultModule,
	}
}
