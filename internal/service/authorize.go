package service

// Authorize is the ownership check shared by every owner-gated mutation.
// An empty actor or owner never matches.
func Authorize(actorID, ownerID string) bool {
	return actorID != "" && ownerID != "" && actorID == ownerID
}
