package ports

//go:generate mockery --name=CatalogRepository --output=mocks --outpkg=mocks
//go:generate mockery --name=BookingStore --output=mocks --outpkg=mocks
//go:generate mockery --name=Tx --output=mocks --outpkg=mocks
//go:generate mockery --name=EventPublisher --output=mocks --outpkg=mocks
