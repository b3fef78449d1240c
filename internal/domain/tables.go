package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	// Catalog
	&Phone{},
	&PhoneVariant{},
	&Accessory{},
	// Promotions
	&FlashDeal{},
}
