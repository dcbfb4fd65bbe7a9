package constants

const (
	ViewData          = "view_data"
	CreateDeliverable = "create_deliverable"
	EditDeliverable   = "edit_deliverable"
	DeleteDeliverable = "delete_deliverable"
	SubmitProof       = "submit_proof"
	ResolveProof      = "resolve_proof"
	SubmitCost        = "submit_cost"
	ManageSponsors    = "manage_sponsors"
	ReconcileSponsor  = "reconcile_sponsor"
	ManageUsers       = "manage_users"
	AssignRole        = "assign_role"
	UploadFile        = "upload_file"
)
