package domain

var Tables = []interface{}{
	&Product{},
	&DoctorProfile{},
	&BrandSettings{},
	&AdminCredential{},
}
