package constants

// PermissionRoles maps each permission to the roles allowed to perform it.
// Viewers only ever get ViewData; every mutation excludes them.
var PermissionRoles = map[string][]string{
	ViewData:          {Viewer, Department, Finance, Admin},
	CreateDeliverable: {Admin},
	EditDeliverable:   {Admin},
	DeleteDeliverable: {Admin},
	SubmitProof:       {Department, Admin},
	ResolveProof:      {Admin},
	SubmitCost:        {Finance, Admin},
	ManageSponsors:    {Admin},
	ReconcileSponsor:  {Finance, Admin},
	ManageUsers:       {Admin},
	AssignRole:        {Admin},
	UploadFile:        {Department, Finance, Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
