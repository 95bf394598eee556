package app

import (
	"go.uber.org/zap"

	"github.com/ayurwell/ayurcms/internal/domain"
)

var sampleProducts = []domain.Product{
	{
		Name:        "Ashwagandha Capsules",
		Description: "Premium quality Ashwagandha root extract capsules for stress relief and energy enhancement. Made from organically grown Ashwagandha roots.",
		Ingredients: "Pure Ashwagandha root extract (Withania somnifera), Vegetable capsule",
		Benefits:    "Reduces stress and anxiety, Boosts energy levels, Improves sleep quality, Enhances immunity, Supports muscle strength",
		Usage:       "Take 1-2 capsules daily with warm water after meals, or as directed by your Ayurvedic practitioner.",
		Price:       "499",
	},
	{
		Name:        "Triphala Powder",
		Description: "Traditional Ayurvedic digestive support powder made from three sacred fruits: Amalaki, Bibhitaki, and Haritaki.",
		Ingredients: "Equal parts of Amalaki (Emblica officinalis), Bibhitaki (Terminalia bellirica), Haritaki (Terminalia chebula)",
		Benefits:    "Supports healthy digestion, Natural detoxification, Improves elimination, Rich in antioxidants, Promotes healthy weight",
		Usage:       "Mix 1 teaspoon with warm water before bedtime. Start with half teaspoon and gradually increase.",
		Price:       "299",
	},
	{
		Name:        "Brahmi Hair Oil",
		Description: "Nourishing hair oil infused with Brahmi and other Ayurvedic herbs to promote healthy hair growth and scalp health.",
		Ingredients: "Brahmi (Bacopa monnieri), Bhringraj, Amla, Coconut oil, Sesame oil, Curry leaves",
		Benefits:    "Promotes hair growth, Prevents premature graying, Reduces hair fall, Nourishes scalp, Improves hair texture",
		Usage:       "Massage gently into scalp and hair. Leave for at least 1 hour or overnight. Wash with mild shampoo.",
		Price:       "399",
	},
	{
		Name:        "Turmeric Golden Milk Mix",
		Description: "Aromatic blend of turmeric and traditional spices for preparing the healing golden milk. Perfect for daily wellness routine.",
		Ingredients: "Turmeric (Curcuma longa), Black pepper, Cinnamon, Cardamom, Ginger, Ashwagandha",
		Benefits:    "Anti-inflammatory properties, Supports joint health, Boosts immunity, Improves sleep, Natural antioxidant",
		Usage:       "Mix 1 teaspoon in a cup of warm milk. Add honey if desired. Best taken before bedtime.",
		Price:       "349",
	},
}

// SeedDb inserts the sample catalog and the default singleton records.
// Existing products are left alone; seeding is additive only when the
// catalog is empty.
func (a *Application) SeedDb() error {
	var count int64
	if err := a.gormDB.Model(&domain.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		zap.S().Infof("catalog already has %d products, skipping seed", count)
		return nil
	}

	for i := range sampleProducts {
		p := sampleProducts[i]
		if err := a.dataStore.CreateProduct(&p); err != nil {
			return err
		}
		zap.S().Infof("seeded product: %s", p.Name)
	}

	if _, err := a.dataStore.Doctor(); err != nil {
		return err
	}
	if _, err := a.dataStore.Brand(); err != nil {
		return err
	}
	return nil
}
