package service

// Services bundles the application use cases for transports and jobs.
type Services struct {
	Conversations ConversationService
	Agencies      AgencyService
	Claims        ClaimService
	Compliance    ComplianceService
}
