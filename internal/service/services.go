package service

// Services bundles every resource service behind its interface.
type Services struct {
	User       IUserService
	File       IFileService
	Folder     IFolderService
	Group      IGroupService
	Owner      IOwnerService
	Permission IPermissionService
	Search     ISearchService
	NLP        INLPService
	Acronym    IAcronymService
}

func NewServices(client Requester, debug bool) *Services {
	return &Services{
		User:       NewUserService(client, debug),
		File:       NewFileService(client, debug),
		Folder:     NewFolderService(client, debug),
		Group:      NewGroupService(client, debug),
		Owner:      NewOwnerService(client, debug),
		Permission: NewPermissionService(client, debug),
		Search:     NewSearchService(client, debug),
		NLP:        NewNLPService(client, debug),
		Acronym:    NewAcronymService(client, debug),
	}
}
